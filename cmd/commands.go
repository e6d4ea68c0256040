package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

func ErrUnknownCmd(cmd string) error {
	return fmt.Errorf("ERR unknown command '%s'", cmd)
}

func ErrInvalidNArg(cmd string) error {
	return fmt.Errorf("ERR invalid number of arguments for command '%s'", cmd)
}

var ErrNotInt = errors.New("ERR value is not an integer or out of range")
var ErrUnbalancedQuotes = errors.New("ERR unbalanced quotes")
var ErrSyntax = errors.New("ERR syntax error")
var ErrEmptyCommand = errors.New("ERR empty command")

type CommandType = byte

const (
	// Server commands
	CmdVersion CommandType = iota
	CmdPing
	CmdKeys
	CmdAuth
	CmdHello
	CmdInfo
	CmdDbSize
	CmdFlushAll
	CmdDel
	CmdType
	CmdClient
	// Diaries
	CmdDiaryLPush
	CmdDiaryRPush
	CmdDiaryLPop
	CmdDiaryRPop
	CmdDiaryEntries
	CmdDiaryLen
	CmdDiaryEmpty
	CmdDiarySeed
	CmdDiaryReset
	CmdDiaryTags
	// Lists
	CmdLPush
	CmdLPop
	CmdRPush
	CmdRPop
	CmdLLen
	CmdLRange
	// Queues
	CmdQueueAdd
	CmdQueuePop
	CmdQueueLen
	CmdQueuePeek
	// Sets
	CmdSetAdd
	CmdSetMembers
	CmdSetRem
	CmdSetIsMember
	CmdSetCard
)

type AuthOptions struct {
	User     string
	Password string
}

// EntryArgs carries the fields of a diary entry as sent by the client; they
// are validated when the entry is built.
type EntryArgs struct {
	Title string
	Body  string
	Mood  string
	Tags  []string
}

type Command struct {
	Kind   CommandType
	Name   string
	Key    string
	Keys   []string
	Value  string
	Values []string

	Pattern     string      // keys
	Start       int         // lrange
	Stop        int         // lrange
	Entry       EntryArgs   // dlpush, drpush
	Auth        AuthOptions // auth, hello
	RespVersion string      // hello
}

// Mutates reports whether the command changes the keyspace.
func (c *Command) Mutates() bool {
	switch c.Kind {
	case CmdFlushAll, CmdDel,
		CmdDiaryLPush, CmdDiaryRPush, CmdDiaryLPop, CmdDiaryRPop, CmdDiarySeed, CmdDiaryReset,
		CmdLPush, CmdLPop, CmdRPush, CmdRPop,
		CmdQueueAdd, CmdQueuePop,
		CmdSetAdd, CmdSetRem:
		return true
	}
	return false
}

// ParseInline parses a command typed as a single line, e.g. over telnet.
func ParseInline(message string) (*Command, error) {
	split, err := sanitize(message)
	if err != nil {
		return nil, err
	}

	return ParseCommand(split)
}

func ParseCommand(split []string) (*Command, error) {
	argc := len(split)
	if argc == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := strings.ToLower(split[0])
	c, err := parseArgs(cmd, split, argc)
	if err != nil {
		return nil, err
	}

	c.Name = cmd
	return c, nil
}

func parseArgs(cmd string, split []string, argc int) (*Command, error) {
	switch cmd {
	case "version":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdVersion}, nil
	case "ping":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		ping := &Command{Kind: CmdPing}
		if argc == 2 {
			ping.Value = split[1]
		}
		return ping, nil
	case "keys":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}

		keys := &Command{Kind: CmdKeys, Pattern: "*"}
		if argc == 2 {
			keys.Pattern = split[1]
		}
		return keys, nil
	case "info":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdInfo}, nil
	case "dbsize":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdDbSize}, nil
	case "flushall":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdFlushAll}, nil
	case "auth":
		switch argc {
		case 2:
			return &Command{Kind: CmdAuth, Auth: AuthOptions{User: DefaultUser, Password: split[1]}}, nil
		case 3:
			return &Command{Kind: CmdAuth, Auth: AuthOptions{User: split[1], Password: split[2]}}, nil
		}
		return nil, ErrInvalidNArg(cmd)
	case "hello":
		if argc < 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		hello := &Command{Kind: CmdHello, RespVersion: split[1]}
		for i := 2; i < argc; i++ {
			switch strings.ToLower(split[i]) {
			case "auth":
				if i+2 >= argc {
					return nil, ErrSyntax
				}
				hello.Auth.User = split[i+1]
				hello.Auth.Password = split[i+2]
				i += 2
			case "setname":
				if i+1 >= argc {
					return nil, ErrSyntax
				}
				i++
			default:
				return nil, ErrSyntax
			}
		}
		return hello, nil
	case "client":
		if argc < 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdClient, Values: split[1:]}, nil
	case "del":
		if argc < 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdDel, Keys: split[1:]}, nil
	case "type":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdType, Key: split[1]}, nil
	case "dlpush", "drpush":
		if argc < 4 {
			return nil, ErrInvalidNArg(cmd)
		}
		push := &Command{Kind: CmdDiaryLPush, Key: split[1], Entry: EntryArgs{Title: split[2], Body: split[3]}}
		if cmd == "drpush" {
			push.Kind = CmdDiaryRPush
		}

		for i := 4; i < argc; i++ {
			if i+1 >= argc {
				return nil, ErrSyntax
			}
			switch strings.ToLower(split[i]) {
			case "mood":
				push.Entry.Mood = split[i+1]
			case "tags":
				push.Entry.Tags = append(push.Entry.Tags, strings.Split(split[i+1], ",")...)
			default:
				return nil, ErrSyntax
			}
			i++
		}
		return push, nil
	case "dlpop", "drpop", "dentries", "dlen", "dempty", "dseed", "dreset", "dtags":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: diaryKeyCommands[cmd], Key: split[1]}, nil
	case "lpush", "rpush":
		if argc < 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		push := &Command{Kind: CmdLPush, Key: split[1], Values: []string{}}
		if cmd == "rpush" {
			push.Kind = CmdRPush
		}
		push.Values = append(push.Values, split[2:]...)
		return push, nil
	case "lpop", "rpop":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		pop := &Command{Kind: CmdLPop, Key: split[1]}
		if cmd == "rpop" {
			pop.Kind = CmdRPop
		}
		return pop, nil
	case "llen":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdLLen, Key: split[1]}, nil
	case "lrange":
		if argc != 4 {
			return nil, ErrInvalidNArg(cmd)
		}
		start, err := strconv.Atoi(split[2])
		if err != nil {
			return nil, ErrNotInt
		}
		stop, err := strconv.Atoi(split[3])
		if err != nil {
			return nil, ErrNotInt
		}
		return &Command{Kind: CmdLRange, Key: split[1], Start: start, Stop: stop}, nil
	case "qadd":
		if argc < 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdQueueAdd, Key: split[1], Values: split[2:]}, nil
	case "qpop":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdQueuePop, Key: split[1]}, nil
	case "qlen":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdQueueLen, Key: split[1]}, nil
	case "qpeek":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdQueuePeek, Key: split[1]}, nil
	case "sadd":
		if argc < 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSetAdd, Key: split[1], Values: split[2:]}, nil
	case "smembers":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSetMembers, Key: split[1]}, nil
	case "srem":
		if argc < 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSetRem, Key: split[1], Values: split[2:]}, nil
	case "sismember":
		if argc != 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSetIsMember, Key: split[1], Value: split[2]}, nil
	case "scard":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSetCard, Key: split[1]}, nil
	}

	return nil, ErrUnknownCmd(cmd)
}

var diaryKeyCommands = map[string]CommandType{
	"dlpop":    CmdDiaryLPop,
	"drpop":    CmdDiaryRPop,
	"dentries": CmdDiaryEntries,
	"dlen":     CmdDiaryLen,
	"dempty":   CmdDiaryEmpty,
	"dseed":    CmdDiarySeed,
	"dreset":   CmdDiaryReset,
	"dtags":    CmdDiaryTags,
}

func isWhitespace(b byte) bool {
	return unicode.IsSpace(rune(b))
}

// sanitize splits a line into arguments, honouring single and double quotes.
func sanitize(message string) ([]string, error) {
	out := []string{}
	i := 0

	for i < len(message) {
		c := message[i]
		if isWhitespace(c) {
			i++
			continue
		}

		if c == '"' || c == '\'' {
			end := strings.IndexByte(message[i+1:], c)
			if end < 0 {
				return nil, ErrUnbalancedQuotes
			}

			out = append(out, message[i+1:i+1+end])
			i += end + 2
			continue
		}

		start := i
		for i < len(message) && !isWhitespace(message[i]) {
			i++
		}
		out = append(out, message[start:i])
	}

	return out, nil
}
