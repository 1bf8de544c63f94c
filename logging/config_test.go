package logging_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tomoemon/demystify/logging"
)

var _ = Describe("Config", func() {
	Describe("Default", func() {
		It("should apply the default values", func() {
			c := logging.Default()
			Expect(c.Level).To(Equal("info"))
			Expect(c.Encoding).To(Equal("json"))
			Expect(c.StacktraceLevel).To(Equal("error"))
			Expect(c.OutputPaths).To(Equal([]string{"stderr"}))
			Expect(c.Demystify.Enabled).To(BeTrue())
			Expect(c.Demystify.EntryStack).To(BeTrue())
			Expect(c.Validate()).To(Succeed())
		})
	})

	Describe("Parse", func() {
		It("should keep defaults for omitted keys", func() {
			c, err := logging.Parse([]byte("level: debug\ndemystify:\n  maxFrames: 5\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Level).To(Equal("debug"))
			Expect(c.Encoding).To(Equal("json"))
			Expect(c.Demystify.Enabled).To(BeTrue())
			Expect(c.Demystify.MaxFrames).To(Equal(5))
		})

		It("should honor explicit false values", func() {
			c, err := logging.Parse([]byte("demystify:\n  enabled: false\n  entryStack: false\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Demystify.Enabled).To(BeFalse())
			Expect(c.Demystify.EntryStack).To(BeFalse())
		})

		It("should accept an empty document", func() {
			c, err := logging.Parse(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(Equal(logging.Default()))
		})

		It("should reject malformed YAML", func() {
			_, err := logging.Parse([]byte("level: [debug"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to parse logging config"))
		})

		DescribeTable("should reject invalid values",
			func(doc string, want error) {
				_, err := logging.Parse([]byte(doc))
				Expect(err).To(MatchError(want))
			},
			Entry("level", "level: loud\n", logging.ErrInvalidLevel),
			Entry("stacktrace level", "stacktraceLevel: never\n", logging.ErrInvalidLevel),
			Entry("encoding", "encoding: xml\n", logging.ErrInvalidEncoding),
			Entry("max frames", "demystify:\n  maxFrames: -1\n", logging.ErrInvalidFrames),
		)
	})

	Describe("Load", func() {
		It("should read the file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "logging.yaml")
			Expect(os.WriteFile(path, []byte("encoding: console\n"), 0o600)).To(Succeed())

			c, err := logging.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Encoding).To(Equal("console"))
		})

		It("should fail for a missing file", func() {
			_, err := logging.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("DemystifyConfig.Options", func() {
		It("should translate every setting", func() {
			c := logging.DemystifyConfig{RuntimeFrames: true, FullPackagePath: true, MaxFrames: 3, EntryStack: true}
			Expect(c.Options()).To(HaveLen(4))
		})

		It("should return nothing for the zero value", func() {
			Expect(logging.DemystifyConfig{}.Options()).To(BeEmpty())
		})
	})
})
