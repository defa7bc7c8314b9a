package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/frahmantamala/resource-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	It("should write JSON records at the configured level", func() {
		var buf bytes.Buffer
		lg := logger.Configure(logger.Options{Level: "warn", Format: "json", Output: &buf})

		lg.Info("dropped")
		lg.Warn("kept", "employee_id", "emp-1")

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("kept"))
		Expect(record["employee_id"]).To(Equal("emp-1"))
	})

	It("should parse levels case-insensitively", func() {
		Expect(logger.ParseLevel("DEBUG")).To(Equal(slog.LevelDebug))
		Expect(logger.ParseLevel("warning")).To(Equal(slog.LevelWarn))
		Expect(logger.ParseLevel("bogus")).To(Equal(slog.LevelInfo))
	})
})
