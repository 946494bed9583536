package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// levelWriter writes one level's entries to <Director>/<level>.log, rotated by lumberjack.
type levelWriter struct {
	once   sync.Once
	config Config
	level  string
	out    *lumberjack.Logger
}

func newLevelWriter(config Config, level string) *levelWriter {
	return &levelWriter{
		config: config,
		level:  level,
	}
}

// Write implements io.Writer. The directory is created lazily on first write.
func (w *levelWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		_ = os.MkdirAll(w.config.Director, 0o755)
		w.out = &lumberjack.Logger{
			Filename:   filepath.Join(w.config.Director, w.level+".log"),
			MaxSize:    w.config.MaxSize,
			MaxBackups: w.config.MaxBackups,
			MaxAge:     w.config.MaxAge,
			Compress:   w.config.Compress,
			LocalTime:  true,
		}
	})
	return w.out.Write(p)
}

// Sync implements zapcore.WriteSyncer. lumberjack writes through to the file.
func (w *levelWriter) Sync() error {
	return nil
}

// Close closes the underlying rotating file, if it was opened.
func (w *levelWriter) Close() error {
	if w.out == nil {
		return nil
	}
	return w.out.Close()
}

var (
	writerRegistry   []*levelWriter
	writerRegistryMu sync.Mutex
)

func registerWriter(w *levelWriter) {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()
	writerRegistry = append(writerRegistry, w)
}

// CloseAllWriters closes every log file opened by loggers in this process.
func CloseAllWriters() error {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()

	var lastErr error
	for _, w := range writerRegistry {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	writerRegistry = nil
	return lastErr
}

var _ io.WriteCloser = (*levelWriter)(nil)
