package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/tomoemon/demystify"
	"github.com/tomoemon/demystify/logging"
)

// failAsync returns an error captured on a new goroutine.
//
//go:noinline
func failAsync() error {
	ch := make(chan error, 1)
	go func() {
		ch <- demystify.With(errors.New("disk full"))
	}()
	return <-ch
}

func decode(buf []byte) map[string]any {
	var entry map[string]any
	ExpectWithOffset(1, json.Unmarshal(buf, &entry)).To(Succeed(), string(buf))
	return entry
}

var _ = Describe("Logger", func() {
	var (
		cfg logging.Config
		buf bytes.Buffer
	)

	BeforeEach(func() {
		cfg = logging.Default()
		buf.Reset()
	})

	Describe("BuildWriter", func() {
		It("should demystify error stacks", func() {
			logger, err := cfg.BuildWriter(&buf)
			Expect(err).NotTo(HaveOccurred())

			logger.Error("write failed", zap.Error(failAsync()))

			entry := decode(buf.Bytes())
			Expect(entry["error"]).To(Equal("disk full"))
			Expect(entry["errorVerbose"]).To(ContainSubstring("go func literal #1 in logging_test.failAsync()"))
			Expect(entry["stacktrace"]).NotTo(ContainSubstring("tRunner\n"))
			Expect(entry).To(HaveKey("caller"))
		})

		It("should leave stacks alone when disabled", func() {
			cfg.Demystify.Enabled = false
			logger, err := cfg.BuildWriter(&buf)
			Expect(err).NotTo(HaveOccurred())

			logger.Error("write failed", zap.Error(failAsync()))

			Expect(decode(buf.Bytes())["errorVerbose"]).To(ContainSubstring("logging_test.failAsync.func1"))
		})

		It("should respect the level", func() {
			cfg.Level = "warn"
			logger, err := cfg.BuildWriter(&buf)
			Expect(err).NotTo(HaveOccurred())

			logger.Info("hidden")
			Expect(buf.Len()).To(BeZero())
		})

		It("should write console output", func() {
			cfg.Encoding = "console"
			logger, err := cfg.BuildWriter(&buf)
			Expect(err).NotTo(HaveOccurred())

			logger.Warn("plain", zap.String("k", "v"))
			Expect(buf.String()).To(ContainSubstring("plain"))
			Expect(buf.String()).To(ContainSubstring(`{"k": "v"}`))
		})

		It("should refuse an invalid config", func() {
			cfg.Encoding = "xml"
			_, err := cfg.BuildWriter(&buf)
			Expect(err).To(MatchError(logging.ErrInvalidEncoding))
		})
	})

	Describe("Build", func() {
		It("should keep production sampling", func() {
			path := filepath.Join(GinkgoT().TempDir(), "out.log")
			cfg.OutputPaths = []string{path}

			logger, err := cfg.Build()
			Expect(err).NotTo(HaveOccurred())
			for range 300 {
				logger.Info("repeated")
			}
			Expect(logger.Sync()).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			lines := bytes.Count(data, []byte("\n"))
			Expect(lines).To(BeNumerically(">=", 100))
			Expect(lines).To(BeNumerically("<", 300))
		})

		It("should not sample in development mode", func() {
			path := filepath.Join(GinkgoT().TempDir(), "out.log")
			cfg.OutputPaths = []string{path}
			cfg.Development = true

			logger, err := cfg.Build()
			Expect(err).NotTo(HaveOccurred())
			for range 150 {
				logger.Info("repeated")
			}
			Expect(logger.Sync()).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.Count(data, []byte("\n"))).To(Equal(150))
		})
	})

	Describe("NewLogger", func() {
		It("should log errors through logr", func() {
			path := filepath.Join(GinkgoT().TempDir(), "out.log")
			cfg.OutputPaths = []string{path}

			log, err := logging.NewLogger(cfg)
			Expect(err).NotTo(HaveOccurred())
			log.WithValues("component", "store").Error(failAsync(), "write failed")

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			entry := decode(bytes.TrimSpace(data))
			Expect(entry["msg"]).To(Equal("write failed"))
			Expect(entry["component"]).To(Equal("store"))
			Expect(entry["errorVerbose"]).To(ContainSubstring("go func literal #1 in logging_test.failAsync()"))
		})

		It("should return a discard logger on error", func() {
			cfg.Level = "loud"
			log, err := logging.NewLogger(cfg)
			Expect(err).To(MatchError(logging.ErrInvalidLevel))
			Expect(log.GetSink()).To(BeNil())
		})
	})

	Describe("NewLoggerFromZap", func() {
		It("should wrap the given logger", func() {
			zl, err := cfg.BuildWriter(&buf)
			Expect(err).NotTo(HaveOccurred())

			logging.NewLoggerFromZap(zl).Info("hello", "n", 1)
			Expect(decode(buf.Bytes())["n"]).To(BeEquivalentTo(1))
		})
	})
})
