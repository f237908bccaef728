package router

import (
	"context"
	"errors"
	"runtime"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"ffbot/internal/metrics"
	"ffbot/internal/runtime/supervisor"
	"ffbot/internal/storage"
	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

type Access int

const (
	AccessEveryone Access = iota
	// AccessOwnerOnly restricts a command to the configured owners. With no
	// owners configured everyone may run it.
	AccessOwnerOnly
)

const (
	unknownText      = "Unknown command. Try /help"
	unauthorizedText = "This command is restricted to the bot owners."
	busyText         = "Busy, try again in a moment."
)

var errDenied = errors.New("access denied")

type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Access      Access
	Timeout     time.Duration // overrides Config.DefaultTimeout
	Handle      HandlerFunc
}

type Request struct {
	Update       transport.Update
	Chat         transport.ChatTarget
	FromID       int64
	FromUsername string
	Command      string // canonical name
	Args         []string

	// Parsed arguments
	RawArgs   []string
	Flags     map[string]string
	BoolFlags map[string]bool
	ReqID     string

	Adapter transport.Adapter
	Logger  logx.Logger
}

// Reply sends HTML text back to the chat and thread the command came from.
func (r *Request) Reply(ctx context.Context, text string) error {
	_, err := r.Adapter.SendText(ctx, r.Chat, text, transport.HTML())
	return err
}

type Config struct {
	Owners []int64
	// BotUsername filters "/cmd@name" addressed to other bots in groups.
	BotUsername    string
	Workers        int
	QueueSize      int
	DefaultTimeout time.Duration
}

type Deps struct {
	Adapter transport.Adapter
	Log     logx.Logger
	Store   storage.Store
	Metrics *metrics.Recorder
}

// Router maps "/command" messages to handlers and runs them on a bounded
// worker pool.
type Router struct {
	mu     sync.RWMutex
	cmds   map[string]Command // canonical name -> command
	alias  map[string]Command // every accepted name -> command
	owners []int64

	cfg  Config
	log  logx.Logger
	deps Deps

	runMu   sync.Mutex
	running bool
	sup     *supervisor.Supervisor

	jobs chan func()
}

func New(cfg Config, d Deps) *Router {
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = max(runtime.NumCPU(), 2)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}
	cfg.BotUsername = strings.TrimPrefix(cfg.BotUsername, "@")
	return &Router{
		cmds:   map[string]Command{},
		alias:  map[string]Command{},
		owners: append([]int64(nil), cfg.Owners...),
		cfg:    cfg,
		log:    d.Log.With(logx.String("comp", "telegram.router")),
		deps:   d,
		jobs:   make(chan func(), cfg.QueueSize),
	}
}

// Supervisor returns the worker pool supervisor while dispatching, else nil.
func (r *Router) Supervisor() *supervisor.Supervisor {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if !r.running {
		return nil
	}
	return r.sup
}

func (r *Router) setSupervisor(sup *supervisor.Supervisor, running bool) {
	r.runMu.Lock()
	r.sup = sup
	r.running = running
	r.runMu.Unlock()
}

func (r *Router) tryEnqueue(fn func()) bool {
	select {
	case r.jobs <- fn:
		return true
	default:
		return false
	}
}

// SetOwners updates the owner list. Safe to call during hot reload.
func (r *Router) SetOwners(owners []int64) {
	cp := append([]int64(nil), owners...)
	r.mu.Lock()
	r.owners = cp
	r.mu.Unlock()
}

func (r *Router) allowed(c Command, from int64) bool {
	if c.Access != AccessOwnerOnly {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners) == 0 || slices.Contains(r.owners, from)
}

// SetCommands replaces the command table. /help is always added.
func (r *Router) SetCommands(cmds []Command) {
	helper := Command{
		Name:        "help",
		Aliases:     []string{"start"},
		Description: "list commands",
		Usage:       "/help [command]",
		Handle: func(ctx context.Context, req *Request) error {
			return req.Reply(ctx, r.helpText(req.Args))
		},
	}
	cmds = append(slices.Clone(cmds), helper)

	byName := map[string]Command{}
	alias := map[string]Command{}
	for _, c := range cmds {
		name := sanitizeCommand(c.Name)
		if name == "" || c.Handle == nil {
			continue
		}
		c.Name = name
		byName[name] = c
		alias[name] = c
	}
	// aliases never shadow a canonical name
	for _, c := range byName {
		for _, a := range c.Aliases {
			a = sanitizeCommand(a)
			if a == "" {
				continue
			}
			if _, taken := alias[a]; taken {
				continue
			}
			alias[a] = c
		}
	}

	r.mu.Lock()
	r.cmds = byName
	r.alias = alias
	r.mu.Unlock()
}

// Commands returns the canonical command table sorted by name.
func (r *Router) Commands() []Command {
	r.mu.RLock()
	out := make([]Command, 0, len(r.cmds))
	for _, c := range r.cmds {
		out = append(out, c)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// UpdateMenu pushes the command list to the platform menu when the adapter
// supports it.
func (r *Router) UpdateMenu(ctx context.Context) error {
	up, ok := r.deps.Adapter.(transport.CommandMenuUpdater)
	if !ok {
		return nil
	}
	return up.UpdateMenuCommands(ctx, menuCommands(r.Commands()))
}

// DispatchLoop routes updates until ctx is done or updates is closed, then
// lets queued commands finish for up to 3s.
func (r *Router) DispatchLoop(ctx context.Context, updates <-chan transport.Update) error {
	sup := supervisor.New(ctx,
		supervisor.WithLogger(r.log),
		supervisor.WithCancelOnError(false),
	)
	r.setSupervisor(sup, true)
	r.log.Info("command dispatcher started", logx.Int("workers", r.cfg.Workers), logx.Int("job_queue_cap", cap(r.jobs)))

	for i := 0; i < r.cfg.Workers; i++ {
		idx := i
		sup.GoRestart("command.worker."+strconv.Itoa(idx), func(c context.Context) error {
			for {
				select {
				case <-c.Done():
					return nil
				case job, ok := <-r.jobs:
					if !ok {
						return nil
					}
					r.runJob(idx, job)
				}
			}
		}, supervisor.WithRestartBackoff(200*time.Millisecond, 5*time.Second))
	}

	defer func() {
		r.setSupervisor(sup, false)
		close(r.jobs)
		wctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = sup.Wait(wctx)
		cancel()
		sup.Cancel()
		r.setSupervisor(nil, false)
		r.log.Info("command dispatcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if up.Kind == transport.UpdateMessage {
				r.routeMessage(ctx, up)
			}
		}
	}
}

func (r *Router) runJob(worker int, job func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("panic in command job", logx.Int("worker", worker), logx.Any("panic", p), logx.String("stack", string(debug.Stack())))
		}
	}()
	job()
}

func (r *Router) routeMessage(root context.Context, up transport.Update) {
	msg := up.Message
	if msg == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}
	parts := tokenizeCommandLine(text)
	if len(parts) == 0 {
		return
	}
	word, mention := commandWord(parts[0])
	if mention != "" && r.cfg.BotUsername != "" && !strings.EqualFold(mention, r.cfg.BotUsername) {
		return
	}
	args := parts[1:]

	r.mu.RLock()
	cmd, ok := r.alias[word]
	r.mu.RUnlock()
	if !ok {
		// in groups stay quiet unless the command was addressed to us
		if !msg.IsGroup || mention != "" {
			_, _ = r.deps.Adapter.SendText(root, msg.Target(), unknownText, nil)
		}
		return
	}
	r.enqueueCommand(root, up, cmd, args)
}

func (r *Router) enqueueCommand(root context.Context, up transport.Update, cmd Command, raw []string) {
	msg := up.Message
	if !r.allowed(cmd, msg.FromID) {
		r.log.Info("command denied", logx.String("cmd", cmd.Name), logx.Int64("from_id", msg.FromID))
		r.deps.Metrics.RecordCommand(cmd.Name, errDenied)
		_, _ = r.deps.Adapter.SendText(root, msg.Target(), unauthorizedText, nil)
		return
	}

	pos, flags, bools := parseFlags(raw)
	rid := newReqID()
	req := &Request{
		Update:       up,
		Chat:         msg.Target(),
		FromID:       msg.FromID,
		FromUsername: msg.FromUsername,
		Command:      cmd.Name,
		Args:         pos,
		RawArgs:      raw,
		Flags:        flags,
		BoolFlags:    bools,
		ReqID:        rid,
		Adapter:      r.deps.Adapter,
		Logger: r.log.With(
			logx.String("rid", rid),
			logx.Int64("chat_id", msg.ChatID),
			logx.Int64("from_id", msg.FromID),
			logx.String("cmd", cmd.Name),
		),
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = r.cfg.DefaultTimeout
	}
	final := Chain(
		cmd.Handle,
		MWPanicRecover(r.log),
		MWRequestLog(r.log),
		MWMetrics(r.deps.Metrics),
		MWAudit(r.deps.Store, r.log),
		MWTimeout(timeout),
	)

	if !r.tryEnqueue(func() { _ = final(root, req) }) {
		_, _ = r.deps.Adapter.SendText(root, req.Chat, busyText, nil)
	}
}
