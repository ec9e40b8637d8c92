// Package zap adapts a *zap.SugaredLogger to the duraclient.Logger interface.
package zap

import (
	"go.uber.org/zap"
)

type ZapLogger struct{ S *zap.SugaredLogger }

func (z ZapLogger) Debug(msg string, kv ...interface{}) { z.S.Debugw(msg, kv...) }
func (z ZapLogger) Info(msg string, kv ...interface{})  { z.S.Infow(msg, kv...) }
func (z ZapLogger) Warn(msg string, kv ...interface{})  { z.S.Warnw(msg, kv...) }
func (z ZapLogger) Error(msg string, kv ...interface{}) { z.S.Errorw(msg, kv...) }
