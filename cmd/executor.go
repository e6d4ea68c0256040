package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"skabillium/memo/cmd/db"
	"skabillium/memo/cmd/resp"
)

var ErrNoAuth = errors.New("NOAUTH Authentication required.")
var ErrWrongPass = errors.New("WRONGPASS invalid username-password pair or user is disabled.")
var ErrNoProto = errors.New("NOPROTO unsupported protocol version")

func ErrNothingToRemove(key string) error {
	return fmt.Errorf("EMPTY nothing to remove from '%s': %w", key, db.ErrEmptyList)
}

// Session holds the per-client state of a connection.
type Session struct {
	Authenticated bool
	RespVersion   int
}

// Executor runs parsed commands against the database. It is shared by the
// RESP server and the HTTP API so both go through the same journal and
// metrics.
type Executor struct {
	// serializes mutations so the journal and watch events follow the
	// order in which changes were applied
	mu sync.Mutex

	db      *db.Database
	options *ServerOptions
	journal *Journal
	hub     *Hub
	metrics *Metrics
	logger  *slog.Logger
}

// NewExecutor builds an executor. journal and hub may be nil.
func NewExecutor(database *db.Database, options *ServerOptions, journal *Journal, hub *Hub, metrics *Metrics, logger *slog.Logger) *Executor {
	return &Executor{db: database, options: options, journal: journal, hub: hub, metrics: metrics, logger: logger}
}

func (e *Executor) NewSession() *Session {
	return &Session{Authenticated: !e.options.AuthEnabled, RespVersion: 2}
}

// Execute runs a command and returns its reply value. Failures are returned
// as errors carrying a RESP error prefix. Successful mutations are journaled
// and diary changes are published to watchers.
func (e *Executor) Execute(sess *Session, cmd *Command) (any, error) {
	if !sess.Authenticated && cmd.Kind != CmdAuth && cmd.Kind != CmdHello && cmd.Kind != CmdPing {
		e.metrics.CommandFailed(cmd.Name)
		return nil, ErrNoAuth
	}

	if cmd.Mutates() {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	reply, err := e.run(sess, cmd)
	e.metrics.CommandDone(cmd.Name)
	if err != nil {
		e.metrics.CommandFailed(cmd.Name)
		if errors.Is(err, db.ErrEmptyList) {
			e.metrics.EmptyRemoval(cmd.Name)
		}
		e.logger.Debug("command failed", "cmd", cmd.Name, "key", cmd.Key, "err", err)
		return nil, err
	}

	if cmd.Mutates() {
		e.journal.Record(cmd.Args())
		if event, ok := diaryEvent(cmd, reply); ok {
			e.hub.Publish(event)
		}
	}
	return reply, nil
}

func (e *Executor) run(sess *Session, cmd *Command) (any, error) {
	switch cmd.Kind {
	case CmdVersion:
		return "Memo server version " + MemoVersion, nil
	case CmdPing:
		if cmd.Value != "" {
			return cmd.Value, nil
		}
		return resp.SimpleString("PONG"), nil
	case CmdAuth:
		if !e.checkCredentials(cmd.Auth) {
			return nil, ErrWrongPass
		}
		sess.Authenticated = true
		return resp.OK, nil
	case CmdHello:
		return e.hello(sess, cmd)
	case CmdClient:
		return resp.OK, nil
	case CmdInfo:
		return e.info(), nil
	case CmdDbSize:
		return e.db.Size(), nil
	case CmdKeys:
		keys, err := e.db.Keys(cmd.Pattern)
		if err != nil {
			return nil, ErrSyntax
		}
		return keys, nil
	case CmdFlushAll:
		e.db.FlushAll()
		return resp.OK, nil
	case CmdDel:
		return e.db.Del(cmd.Keys...), nil
	case CmdType:
		return resp.SimpleString(e.db.Type(cmd.Key)), nil

	case CmdDiaryLPush, CmdDiaryRPush:
		entry, err := db.NewEntry(cmd.Entry.Title, cmd.Entry.Body, db.WithMood(cmd.Entry.Mood), db.WithTags(cmd.Entry.Tags...))
		if err != nil {
			return nil, fmt.Errorf("ERR %w", err)
		}
		if cmd.Kind == CmdDiaryLPush {
			_, err = e.db.DiaryPushFront(cmd.Key, entry)
		} else {
			_, err = e.db.DiaryPushBack(cmd.Key, entry)
		}
		if err != nil {
			return nil, err
		}
		return entry, nil
	case CmdDiaryLPop, CmdDiaryRPop:
		var entry db.Entry
		var err error
		if cmd.Kind == CmdDiaryLPop {
			entry, err = e.db.DiaryPopFront(cmd.Key)
		} else {
			entry, err = e.db.DiaryPopBack(cmd.Key)
		}
		if errors.Is(err, db.ErrEmptyList) {
			return nil, ErrNothingToRemove(cmd.Key)
		}
		if err != nil {
			return nil, err
		}
		return entry, nil
	case CmdDiaryEntries:
		return e.db.DiaryEntries(cmd.Key)
	case CmdDiaryLen:
		return e.db.DiaryLen(cmd.Key)
	case CmdDiaryEmpty:
		return e.db.DiaryIsEmpty(cmd.Key)
	case CmdDiarySeed:
		return e.db.DiarySeed(cmd.Key)
	case CmdDiaryReset:
		if err := e.db.DiaryReset(cmd.Key); err != nil {
			return nil, err
		}
		return resp.OK, nil
	case CmdDiaryTags:
		return e.db.DiaryTags(cmd.Key)

	case CmdLPush:
		return e.db.LPush(cmd.Key, cmd.Values...)
	case CmdRPush:
		return e.db.RPush(cmd.Key, cmd.Values...)
	case CmdLPop, CmdRPop:
		pop := e.db.LPop
		if cmd.Kind == CmdRPop {
			pop = e.db.RPop
		}
		return optional(pop(cmd.Key))
	case CmdLLen:
		return e.db.LLen(cmd.Key)
	case CmdLRange:
		return e.db.LRange(cmd.Key, cmd.Start, cmd.Stop)

	case CmdQueueAdd:
		return e.db.QAdd(cmd.Key, cmd.Values...)
	case CmdQueuePop:
		return optional(e.db.QPop(cmd.Key))
	case CmdQueueLen:
		return e.db.QLen(cmd.Key)
	case CmdQueuePeek:
		return optional(e.db.QPeek(cmd.Key))

	case CmdSetAdd:
		return e.db.SAdd(cmd.Key, cmd.Values...)
	case CmdSetRem:
		return e.db.SRem(cmd.Key, cmd.Values...)
	case CmdSetMembers:
		return e.db.SMembers(cmd.Key)
	case CmdSetIsMember:
		ok, err := e.db.SIsMember(cmd.Key, cmd.Value)
		if err != nil {
			return nil, err
		}
		if ok {
			return 1, nil
		}
		return 0, nil
	case CmdSetCard:
		return e.db.SCard(cmd.Key)
	}

	return nil, ErrUnknownCmd(cmd.Name)
}

// optional turns a missing value into a nil reply.
func optional(value string, found bool, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return value, nil
}

func (e *Executor) checkCredentials(auth AuthOptions) bool {
	if !e.options.AuthEnabled {
		return true
	}
	return auth.User == e.options.User && auth.Password == e.options.Password
}

func (e *Executor) hello(sess *Session, cmd *Command) (any, error) {
	var version int
	switch cmd.RespVersion {
	case "2":
		version = 2
	case "3":
		version = 3
	default:
		return nil, ErrNoProto
	}

	if cmd.Auth.User != "" || cmd.Auth.Password != "" {
		if !e.checkCredentials(cmd.Auth) {
			return nil, ErrWrongPass
		}
		sess.Authenticated = true
	}
	if !sess.Authenticated {
		return nil, ErrNoAuth
	}

	sess.RespVersion = version
	return map[string]any{
		"server":  "memo",
		"version": MemoVersion,
		"proto":   version,
		"mode":    "standalone",
		"role":    "master",
		"modules": []string{},
	}, nil
}

func (e *Executor) info() string {
	var b strings.Builder
	b.WriteString("# Server\r\n")
	fmt.Fprintf(&b, "memo_version:%s\r\n", MemoVersion)
	fmt.Fprintf(&b, "tcp_port:%s\r\n", e.options.Port)
	fmt.Fprintf(&b, "diary_linkage:%s\r\n", e.options.Linkage)
	fmt.Fprintf(&b, "journal_enabled:%t\r\n", e.options.JournalEnabled)
	b.WriteString("# Keyspace\r\n")
	fmt.Fprintf(&b, "keys:%d\r\n", e.db.Size())
	return b.String()
}

// Args returns the canonical argument list of a command, as written to the
// journal.
func (c *Command) Args() []string {
	args := []string{c.Name}
	switch c.Kind {
	case CmdFlushAll:
		return args
	case CmdDel:
		return append(args, c.Keys...)
	case CmdDiaryLPush, CmdDiaryRPush:
		args = append(args, c.Key, c.Entry.Title, c.Entry.Body)
		if c.Entry.Mood != "" {
			args = append(args, "mood", c.Entry.Mood)
		}
		if len(c.Entry.Tags) > 0 {
			args = append(args, "tags", strings.Join(c.Entry.Tags, ","))
		}
		return args
	case CmdLPush, CmdRPush, CmdQueueAdd, CmdSetAdd, CmdSetRem:
		return append(append(args, c.Key), c.Values...)
	}

	if c.Key != "" {
		args = append(args, c.Key)
	}
	return args
}
