package opt

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/FlavioCFOliveira/ffnet/internal/net"
)

// CSVLogger writes one epoch,loss,time_seconds row per epoch to Filename.
// The first failure is logged and stops the logger for the rest of the
// session; training itself carries on.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	// Log receives failures (default: the training optimizer's Logger).
	Log *slog.Logger

	session *slog.Logger
	file    *os.File
	w       *csv.Writer
	start   time.Time
}

// NewCSVLogger creates a CSVLogger. With append set, rows are added to an
// existing file and the header is written only if the file is empty.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{Filename: filename, Append: append}
}

func (c *CSVLogger) useSessionLogger(l *slog.Logger) { c.session = l }

func (c *CSVLogger) OnTrainBegin(n *net.Network) {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if c.Append {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(c.Filename, flag, 0o644)
	if err != nil {
		c.fail("open", err)
		return
	}
	c.file, c.w, c.start = f, csv.NewWriter(f), time.Now()

	info, err := f.Stat()
	if err != nil {
		c.fail("stat", err)
		c.close()
		return
	}
	if info.Size() == 0 {
		c.write("write header", []string{"epoch", "loss", "time_seconds"})
	}
}

func (c *CSVLogger) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	if c.w == nil {
		return
	}
	c.write("write row", []string{
		strconv.Itoa(epoch),
		strconv.FormatFloat(loss, 'f', 6, 64),
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 2, 64),
	})
}

func (c *CSVLogger) OnTrainEnd(n *net.Network) {
	c.close()
}

// write flushes every record so the file is readable while training runs.
func (c *CSVLogger) write(op string, record []string) {
	err := c.w.Write(record)
	if err == nil {
		c.w.Flush()
		err = c.w.Error()
	}
	if err != nil {
		c.fail(op, err)
		c.close()
	}
}

func (c *CSVLogger) close() {
	if c.file == nil {
		return
	}
	if err := c.file.Close(); err != nil {
		c.fail("close", err)
	}
	c.file, c.w = nil, nil
}

func (c *CSVLogger) fail(op string, err error) {
	callbackLogger(c.Log, c.session).Warn("csv logger failed",
		slog.String("op", op),
		slog.String("file", c.Filename),
		slog.Any("error", err),
	)
}
