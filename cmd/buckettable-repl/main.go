package main

// buckettable-repl is an interactive shell over an in-process
// pkg/typed.Cache[uint64,[24]byte-backed record], for exploring dict/cache
// mode behavior (resize thresholds, CLOCK eviction) without standing up an
// HTTP service. There is no teacher precedent for this command; it exists
// because a byte-buffer/hashing library benefits from a REPL the way a
// database client does, and uses peterh/liner for line editing and history.
//
// Commands:
//   set <key> <val>     insert/update in dict mode
//   cache <key> <val>   insert/update in cache mode
//   get <key>            fetch
//   unset <key>          remove
//   stats                print length/capacity/load
//   quit / exit
import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/kvtab/buckettable/pkg/table"
	"github.com/kvtab/buckettable/pkg/typed"
)

type record struct {
	Data [24]byte
}

func main() {
	c, err := typed.New[uint64, record](table.WithElementsMin(256))
	if err != nil {
		fmt.Println("init error:", err)
		return
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("buckettable-repl — type 'help' for commands, 'quit' to exit")
	for {
		input, err := line.Prompt("buckettable> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return
		}
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if !dispatch(c, input) {
			return
		}
	}
}

func dispatch(c *typed.Cache[uint64, record], input string) bool {
	fields := strings.Fields(input)
	cmd := fields[0]

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Println("set <key> <val> | cache <key> <val> | get <key> | unset <key> | stats | quit")
	case "set":
		if len(fields) < 3 {
			fmt.Println("usage: set <key> <val>")
			return true
		}
		key, ok := parseKey(fields[1])
		if !ok {
			return true
		}
		inserted, err := c.Set(key, toRecord(fields[2]))
		printResult(inserted, err)
	case "cache":
		if len(fields) < 3 {
			fmt.Println("usage: cache <key> <val>")
			return true
		}
		key, ok := parseKey(fields[1])
		if !ok {
			return true
		}
		evicted, err := c.CacheSet(key, toRecord(fields[2]))
		if err != nil {
			fmt.Println("error:", err)
			return true
		}
		fmt.Println("ok, evicted:", evicted)
	case "get":
		if len(fields) < 2 {
			fmt.Println("usage: get <key>")
			return true
		}
		key, ok := parseKey(fields[1])
		if !ok {
			return true
		}
		v, found := c.Get(key)
		if !found {
			fmt.Println("(miss)")
			return true
		}
		fmt.Println(fromRecord(v))
	case "unset":
		if len(fields) < 2 {
			fmt.Println("usage: unset <key>")
			return true
		}
		key, ok := parseKey(fields[1])
		if !ok {
			return true
		}
		fmt.Println(c.Unset(key))
	case "stats":
		fmt.Printf("length=%d capacity=%d load=%.4f\n", c.Length(), c.Capacity(), c.Snapshot().Load)
	default:
		fmt.Println("unknown command:", cmd)
	}
	return true
}

func parseKey(s string) (uint64, bool) {
	key, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fmt.Println("bad key:", err)
		return 0, false
	}
	return key, true
}

func toRecord(s string) record {
	var r record
	copy(r.Data[:], s)
	return r
}

func fromRecord(r record) string {
	i := len(r.Data)
	for i > 0 && r.Data[i-1] == 0 {
		i--
	}
	return string(r.Data[:i])
}

func printResult(inserted bool, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if inserted {
		fmt.Println("inserted")
	} else {
		fmt.Println("updated")
	}
}
