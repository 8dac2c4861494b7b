package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	buspkg "github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/buslog"
	"github.com/caomingyu/soulqun/fetcher"
	"github.com/caomingyu/soulqun/llm"
	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/renderer"
	"github.com/caomingyu/soulqun/rng"
	"github.com/caomingyu/soulqun/session"
	"github.com/caomingyu/soulqun/supervisor"
	"github.com/caomingyu/soulqun/topic"
)

func main() {
	var (
		maxTurns = flag.Int("turns", 0, "Maximum number of user turns before shutdown (0 = unlimited)")
		seed     = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		backend  = flag.String("backend", "auto", "Responder backend: auto, gemini, deepseek, scripted")
		rssURL   = flag.String("rss", "", "RSS feed URL for live topics instead of the built-in catalog")
		outDir   = flag.String("out", "", "Directory for the markdown transcript (empty = no transcript)")
		verbose  = flag.Bool("v", false, "Show engine logs inline")
	)
	flag.Parse()

	// .env is optional, real env always wins.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	store, err := persona.NewStore()
	if err != nil {
		log.Fatalf("failed to load personas: %v", err)
	}

	bus := buspkg.NewMemoryBus()
	defer bus.Close()

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(buslog.NewBusHandler(bus, logLevel)))

	var wg sync.WaitGroup
	consoleRenderer := renderer.NewConsoleRenderer(*verbose)
	if err := consoleRenderer.Render(bus, &wg); err != nil {
		log.Fatalf("failed to initialize console renderer: %v", err)
	}

	var markdownRenderer *renderer.MarkdownRenderer
	if *outDir != "" {
		markdownRenderer = renderer.NewMarkdownRenderer(*outDir)
		if err := markdownRenderer.Render(bus, &wg); err != nil {
			log.Fatalf("failed to initialize markdown renderer: %v", err)
		}
	}

	sup := supervisor.NewSupervisor(*maxTurns, bus, cancel)
	sup.Start()

	r := rng.NewDefault()
	if *seed != 0 {
		r = rng.New(*seed)
	}

	responder := pickResponder(ctx, *backend, r)

	in := bufio.NewScanner(os.Stdin)

	t := pickTopic(ctx, in, r, *rssURL)
	aId, bId := pickPersonas(in, store)

	sess, _, err := session.Start(store, responder, r, aId, bId, t, session.WithBus(bus))
	if err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	runLoop(ctx, in, sess)

	sum, err := sess.End(context.Background())
	if err != nil && !errors.Is(err, session.ErrSessionNotActive) {
		slog.Error("failed to end session", "error", err)
	}

	time.Sleep(200 * time.Millisecond) // let the renderers drain
	bus.Close()
	wg.Wait()

	if sum != nil {
		if err := consoleRenderer.Finalize(sum); err != nil {
			slog.Error("failed to print report", "error", err)
		}
		if markdownRenderer != nil {
			if err := markdownRenderer.Finalize(sum); err != nil {
				fmt.Fprintf(os.Stderr, "failed to append report: %v\n", err)
			}
		}
	}
}

// pickResponder selects the reply backend. "auto" prefers Gemini, then
// a DeepSeek-compatible OpenAI endpoint, then the offline scripted one.
func pickResponder(ctx context.Context, backend string, r rng.Source) llm.Responder {
	projectId := os.Getenv("PROJECT_ID")
	location := os.Getenv("LOCATION")
	deepseekKey := os.Getenv("DEEPSEEK_API_KEY")

	tryGemini := func() llm.Responder {
		if projectId == "" || location == "" {
			return nil
		}
		g, err := llm.NewGemini(ctx, projectId, location, envOr("GEMINI_MODEL", "gemini-2.5-flash-lite"))
		if err != nil {
			slog.Warn("gemini unavailable", "error", err)
			return nil
		}
		return g
	}
	tryDeepseek := func() llm.Responder {
		if deepseekKey == "" {
			return nil
		}
		return llm.NewOpenAI(deepseekKey, envOr("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"), envOr("DEEPSEEK_MODEL", "deepseek-chat"))
	}

	switch backend {
	case "gemini":
		if g := tryGemini(); g != nil {
			return g
		}
		log.Fatal("gemini backend requested: set PROJECT_ID and LOCATION")
	case "deepseek":
		if d := tryDeepseek(); d != nil {
			return d
		}
		log.Fatal("deepseek backend requested: set DEEPSEEK_API_KEY")
	case "scripted":
		return llm.NewScripted(r)
	}

	if g := tryGemini(); g != nil {
		return g
	}
	if d := tryDeepseek(); d != nil {
		return d
	}
	fmt.Println("（未配置 API key，使用离线台词模式）")
	return llm.NewScripted(r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// pickTopic offers three candidates, from the RSS feed when one is
// configured and it works, from the built-in catalog otherwise.
func pickTopic(ctx context.Context, in *bufio.Scanner, r rng.Source, rssURL string) *topic.Topic {
	var candidates []*topic.Topic
	if rssURL != "" {
		fetched, err := fetcher.NewRSSFetcher(rssURL, 3).Fetch(ctx)
		if err != nil {
			slog.Warn("rss fetch failed, falling back to catalog", "error", err)
		} else {
			candidates = fetched
		}
	}
	if len(candidates) == 0 {
		catalog, err := topic.NewCatalog()
		if err != nil {
			log.Fatalf("failed to load topic catalog: %v", err)
		}
		candidates = catalog.PickN(r, 3)
	}

	fmt.Println("📢 今日话题候选:")
	for i, t := range candidates {
		fmt.Printf("  %d. [%s] %s\n", i+1, t.Category, t.Title)
	}
	fmt.Print("选一个 (回车随机): ")
	if in.Scan() {
		if n, err := strconv.Atoi(strings.TrimSpace(in.Text())); err == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1]
		}
	}
	return candidates[r.Intn(len(candidates))]
}

// pickPersonas prompts until two distinct platforms are chosen.
func pickPersonas(in *bufio.Scanner, store *persona.Store) (string, string) {
	all := store.All()
	fmt.Println("\n🎭 选择两个平台进群:")
	for i, p := range all {
		fmt.Printf("  %d. %s %s\n", i+1, p.Avatar, p.DisplayName)
	}

	pick := func(prompt string, exclude int) int {
		for {
			fmt.Print(prompt)
			if !in.Scan() {
				os.Exit(0)
			}
			n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
			if err != nil || n < 1 || n > len(all) {
				fmt.Println("输入编号。")
				continue
			}
			if n == exclude {
				fmt.Println("不能选同一个。")
				continue
			}
			return n
		}
	}

	a := pick("第一位: ", 0)
	b := pick("第二位: ", a)
	return all[a-1].PersonaId, all[b-1].PersonaId
}

// runLoop is the interactive chat loop. It returns when the user
// quits, stdin closes, or the supervisor cancels the context.
func runLoop(ctx context.Context, in *bufio.Scanner, sess *session.Session) {
	fmt.Println("\n输入消息开始聊天。命令: /status 查看情绪, /quit 结束并出报告。")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Print("\n你: ")
		if !in.Scan() {
			return
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			return
		}
		if text == "/status" {
			for _, st := range sess.EmotionStatuses() {
				fmt.Printf("  %s\n", st.Display)
			}
			continue
		}

		res, err := sess.Send(ctx, text)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("turn failed", "error", err)
			continue
		}

		if res.Pending != nil {
			promptPrivateChoice(ctx, in, sess, res.Pending.Body, res.Pending.Options)
		}
	}
}

// promptPrivateChoice shows a private message and applies the user's
// decision. Anything but 1..3 defaults to staying out of it.
func promptPrivateChoice(ctx context.Context, in *bufio.Scanner, sess *session.Session, body string, options [3]string) {
	fmt.Printf("\n📩 私聊消息:\n%s\n", body)
	for i, opt := range options {
		fmt.Printf("  %d. %s\n", i+1, opt)
	}
	fmt.Print("你的选择: ")

	choice := 1 // stay neutral
	if in.Scan() {
		if n, err := strconv.Atoi(strings.TrimSpace(in.Text())); err == nil && n >= 1 && n <= 3 {
			choice = n - 1
		}
	}

	if _, err := sess.ResolvePrivateChoice(ctx, choice); err != nil {
		slog.Error("failed to resolve private message", "error", err)
	}
}
