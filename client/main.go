package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"

	"skabillium/memo/cmd/resp"
)

// Walks through an adventure log over a raw connection, using inline
// commands the way a telnet session would.
func main() {
	addr := flag.String("addr", "localhost:5678", "Memo server address")
	password := flag.String("pwd", "memo", "Password for the default user")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	commands := []string{
		"auth memo " + *password,
		"dreset adventure",
		"dlpush adventure 'Guild contract' 'Escort a carriage to Dunmire' mood eager tags quest",
		"dlpush adventure 'Ambush' 'Bandits at the river crossing, nobody hurt' mood tense tags combat,river",
		"dlpush adventure 'Dunmire' 'Delivered the carriage, paid in full' mood relieved tags quest,gold",
		"dentries adventure",
		"dlpop adventure",
		"drpush adventure 'Prologue' 'Signed up with the guild'",
		"dentries adventure",
		"dtags adventure",
	}

	for _, cmd := range commands {
		rw.WriteString(cmd + "\r\n")
		if err := rw.Flush(); err != nil {
			log.Fatal(err)
		}

		reply, err := resp.Read(rw.Reader)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(">", cmd)
		printReply(reply, "  ")
	}
}

func printReply(reply any, indent string) {
	switch v := reply.(type) {
	case []any:
		for i, item := range v {
			fmt.Printf("%s%d)\n", indent, i+1)
			printReply(item, indent+"  ")
		}
	case map[string]any:
		for _, field := range []string{"title", "mood", "tags", "body", "created_at"} {
			if value, ok := v[field]; ok {
				fmt.Printf("%s%s: %v\n", indent, field, value)
			}
		}
	case error:
		fmt.Printf("%s(error) %s\n", indent, v)
	case nil:
		fmt.Printf("%s(nil)\n", indent)
	default:
		fmt.Printf("%s%v\n", indent, v)
	}
}
