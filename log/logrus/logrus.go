// Package logrus adapts a *logrus.Entry to the duraclient.Logger interface.
package logrus

import (
	"github.com/sirupsen/logrus"
)

type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, kv ...interface{}) { l.E.WithFields(fields(kv)).Debug(msg) }
func (l LogrusLogger) Info(msg string, kv ...interface{})  { l.E.WithFields(fields(kv)).Info(msg) }
func (l LogrusLogger) Warn(msg string, kv ...interface{})  { l.E.WithFields(fields(kv)).Warn(msg) }
func (l LogrusLogger) Error(msg string, kv ...interface{}) { l.E.WithFields(fields(kv)).Error(msg) }

func fields(kv []interface{}) logrus.Fields {
	if len(kv) == 0 {
		return nil
	}
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}
