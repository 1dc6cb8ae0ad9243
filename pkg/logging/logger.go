package logging

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	red    = 31
	green  = 32
	yellow = 33
	gray   = 37
)

// Formatter that is called on by logrus.
type EnvctlFormatter struct {
	// DisableColors allows disabling ANSI colors in output
	DisableColors bool
}

func (f *EnvctlFormatter) isColored() bool {
	isColored := runtime.GOOS != "windows"

	return isColored && !f.DisableColors
}

// Format the log entry. Implements logrus.Formatter.
func (f *EnvctlFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	if f.isColored() {
		f.prependColored(b, entry.Level)
	} else {
		fmt.Fprintf(b, "[%s] ", strings.ToUpper(entry.Level.String()))
	}

	if _, ok := entry.Data["action"]; ok {
		kind := fmt.Sprintf("%v", entry.Data["kind"])
		name := fmt.Sprintf("%v", entry.Data["resource"])

		fmt.Fprintf(b, "(%s %s)   ", entry.Data["action"], strings.Join([]string{kind, name}, "/"))
	}

	fmt.Fprintf(b, "%s", entry.Message)

	if err, ok := entry.Data["error"]; ok {
		b.WriteString(fmt.Sprintf("   (%s)", err))
	}

	if f.isColored() {
		f.postpendColored(b)
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

func (f *EnvctlFormatter) prependColored(b *bytes.Buffer, lvl logrus.Level) {
	var levelColor int
	switch lvl {
	case logrus.DebugLevel, logrus.TraceLevel:
		levelColor = gray
	case logrus.WarnLevel:
		levelColor = yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = red
	default:
		levelColor = green
	}

	fmt.Fprintf(b, "\x1b[%dm", levelColor)
}

func (f *EnvctlFormatter) postpendColored(b *bytes.Buffer) {
	fmt.Fprint(b, "\x1b[0m")
}
