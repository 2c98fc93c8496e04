// Command pagedbctl is an interactive shell for driving a buffer pool
// manager by hand against a real on-disk File. Useful for manual testing
// and for watching the clock policy evict pages in real time via \print.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm-lab/pagedb/internal/bufferpool"
	"github.com/tuannm-lab/pagedb/internal/config"
	"github.com/tuannm-lab/pagedb/internal/storage"
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	var (
		cfgPath = flag.String("config", "", "path to a YAML config file (optional)")
		workdir = flag.String("workdir", "", "directory holding the backing page file (overrides config)")
		numBufs = flag.Int("num-bufs", 0, "frame count (overrides config)")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *workdir != "" {
		cfg.Storage.Workdir = *workdir
	}
	if *numBufs > 0 {
		cfg.BufferPool.NumBufs = *numBufs
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))

	if err := os.MkdirAll(cfg.Storage.Workdir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir workdir: %v\n", err)
		os.Exit(1)
	}
	file, err := storage.OpenDiskFile(filepath.Join(cfg.Storage.Workdir, "pagedbctl.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open data file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = file.Close() }()

	pool := bufferpool.New(cfg.BufferPool.NumBufs, logger)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pagedb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("pagedbctl: %d frames over %s\n", cfg.BufferPool.NumBufs, file.Filename())
	fmt.Println("commands: \\alloc  \\read <pageNo>  \\unpin <pageNo> [dirty]  \\flush  \\dispose <pageNo>  \\print  \\help  \\quit")

	runREPL(rl, pool, file)
}

func runREPL(rl *readline.Instance, pool *bufferpool.Pool, file *storage.DiskFile) {
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			if ferr := pool.Close(); ferr != nil {
				fmt.Fprintf(os.Stderr, "close: %v\n", ferr)
			}
			return
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "\\q", "\\quit", "quit", "exit":
			if err := pool.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "close: %v\n", err)
			}
			return

		case "\\help":
			fmt.Println(`\alloc                    allocate + pin a fresh page
\read <pageNo>           pin and read a page
\unpin <pageNo> [dirty]  unpin a page, optionally marking it dirty
\flush                   flush and evict every resident page of this file
\dispose <pageNo>        drop a page from the pool and delete it from the file
\print                   dump the frame table
\quit                    flush and exit`)

		case "\\alloc":
			pageNo, _, err := pool.AllocPage(file)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("allocated page %d (pinned)\n", pageNo)

		case "\\read":
			pageNo, err := parsePageArg(fields)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if _, err := pool.ReadPage(file, pageNo); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("read page %d (pinned)\n", pageNo)

		case "\\unpin":
			pageNo, err := parsePageArg(fields)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			dirty := len(fields) > 2 && fields[2] == "dirty"
			if err := pool.UnpinPage(file, pageNo, dirty); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("unpinned page %d (dirty=%t)\n", pageNo, dirty)

		case "\\flush":
			if err := pool.FlushFile(file); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("flushed")

		case "\\dispose":
			pageNo, err := parsePageArg(fields)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if err := pool.DisposePage(file, pageNo); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("disposed page %d\n", pageNo)

		case "\\print":
			pool.PrintSelf()

		default:
			fmt.Printf("unknown command: %s (try \\help)\n", fields[0])
		}
	}
}

func parsePageArg(fields []string) (storage.PageNum, error) {
	if len(fields) < 2 {
		return storage.InvalidPageNum, fmt.Errorf("usage: %s <pageNo>", fields[0])
	}
	n, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return storage.InvalidPageNum, fmt.Errorf("invalid page number %q: %w", fields[1], err)
	}
	return storage.PageNum(n), nil
}
