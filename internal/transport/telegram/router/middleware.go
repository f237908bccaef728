package router

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"ffbot/internal/metrics"
	"ffbot/internal/storage"
	"ffbot/pkg/logx"
)

type HandlerFunc func(ctx context.Context, req *Request) error

type Middleware func(next HandlerFunc) HandlerFunc

func Chain(h HandlerFunc, m ...Middleware) HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func MWTimeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			if d <= 0 {
				return next(ctx, req)
			}
			cctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(cctx, req)
		}
	}
}

func MWPanicRecover(log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger := log
					if req != nil && !req.Logger.IsZero() {
						logger = req.Logger
					}
					logger.Error("panic recovered",
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}

func MWRequestLog(log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			start := time.Now()
			logger := log
			if !req.Logger.IsZero() {
				logger = req.Logger
			}
			err := next(ctx, req)
			d := time.Since(start)

			fields := []logx.Field{
				logx.Int64("chat_id", req.Chat.ChatID),
				logx.Int("thread_id", req.Chat.ThreadID),
				logx.Int64("from_id", req.FromID),
				logx.String("cmd", req.Command),
				logx.Duration("dur", d),
			}
			if err != nil {
				logger.Warn("request failed", append(fields, logx.Err(err))...)
			} else if d >= 750*time.Millisecond {
				logger.Info("request ok", fields...)
			} else {
				logger.Debug("request ok", fields...)
			}
			return err
		}
	}
}

// MWMetrics counts every command outcome.
func MWMetrics(rec *metrics.Recorder) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			err := next(ctx, req)
			rec.RecordCommand(req.Command, err)
			return err
		}
	}
}

// MWAudit appends one command row to the store. Audit failures are logged
// and never change the command result.
func MWAudit(st storage.Store, log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		if st == nil {
			return next
		}
		return func(ctx context.Context, req *Request) error {
			start := time.Now()
			err := next(ctx, req)
			e := storage.AuditEntry{
				At:            start,
				Kind:          storage.KindCommand,
				Action:        req.Command,
				ActorID:       req.FromID,
				ActorUsername: req.FromUsername,
				ChatID:        req.Chat.ChatID,
				ThreadID:      req.Chat.ThreadID,
				OK:            err == nil,
				TookMS:        time.Since(start).Milliseconds(),
			}
			if err != nil {
				e.Error = err.Error()
			}
			actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if aerr := st.AppendAudit(actx, e); aerr != nil {
				log.Warn("command audit failed", logx.String("cmd", req.Command), logx.Err(aerr))
			}
			return err
		}
	}
}
