// Package main is the entry point for the Supriya CLI. Supriya is a
// voice-driven personal assistant: each utterance is classified into
// directives, actions fan out concurrently, and question directives
// are merged into a single spoken reply.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Arya182-ui/supriya/internal/answer"
	"github.com/Arya182-ui/supriya/internal/bus"
	"github.com/Arya182-ui/supriya/internal/chat"
	"github.com/Arya182-ui/supriya/internal/config"
	"github.com/Arya182-ui/supriya/internal/data"
	"github.com/Arya182-ui/supriya/internal/dispatch"
	"github.com/Arya182-ui/supriya/internal/handlers"
	"github.com/Arya182-ui/supriya/internal/intent"
	"github.com/Arya182-ui/supriya/internal/llm"
	"github.com/Arya182-ui/supriya/internal/logging"
	"github.com/Arya182-ui/supriya/internal/realtime"
	"github.com/Arya182-ui/supriya/internal/session"
	"github.com/Arya182-ui/supriya/internal/voice"
)

var (
	version      = "0.1.0"
	cfgPath      string
	verbose      bool
	voiceEnabled bool

	cfg      *config.Config
	logClose func()
)

var (
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "supriya",
		Short: "Supriya - voice-driven personal assistant",
		Long: `Supriya listens for one utterance at a time, decides what it asks
for, runs every requested action concurrently and answers every
question in a single reply.

Start interactive mode:  supriya
One-shot question:       supriya ask "how are you"
Inspect classification:  supriya classify "open chrome and who is akbar"`,
		PersistentPreRunE: initApp,
		RunE:              runRepl,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.supriya/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&voiceEnabled, "voice", false, "connect to the speech bridge")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Supriya v%s\n", version)
		},
	})

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
	if logClose != nil {
		logClose()
	}
}

// initApp loads configuration and installs the global logger.
func initApp(cmd *cobra.Command, args []string) error {
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFromPath(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logClose, err = logging.Setup(level, cfg.Logging.File)
	if err != nil {
		return err
	}

	lipgloss.SetColorProfile(termenv.ColorProfile())
	return nil
}

// app holds the assembled pipeline for one process.
type app struct {
	cfg        *config.Config
	sess       *session.Session
	classifier *intent.Classifier
	dispatcher *dispatch.Dispatcher
	store      *data.Store
	events     *bus.Bus
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.events.Close()
}

// buildApp wires providers, responders, handlers and the dispatcher
// from configuration.
func buildApp(cfg *config.Config) (*app, error) {
	sess := session.New(cfg.Session.Username, cfg.Session.AssistantName,
		session.WithHistoryLimit(cfg.Session.HistoryLimit))

	decisionProv, err := buildProvider(cfg, cfg.LLM.DecisionProvider)
	if err != nil {
		return nil, err
	}
	chatProv, err := buildProvider(cfg, cfg.LLM.ChatProvider)
	if err != nil {
		return nil, err
	}

	classifier := intent.NewClassifier(
		session.NewDecisionModel(decisionProv),
		intent.WithMaxRetries(cfg.Classifier.MaxRetries),
	)

	chatbot := chat.New(chatProv, sess)
	searchEngine := realtime.NewEngine(chatProv,
		realtime.NewWebSearchClient(&http.Client{Timeout: 20 * time.Second}), sess,
		realtime.WithResultLimit(cfg.Realtime.ResultLimit))
	resolver := answer.NewResolver(chatbot, searchEngine)

	store, err := data.Open(cfg.Data.DBPath)
	if err != nil {
		return nil, err
	}

	registry := handlers.NewDefault(handlers.Deps{
		System: handlers.NewSystemController(handlers.ExecRunner{},
			handlers.WithCaptureDir(cfg.Handlers.CaptureDir),
			handlers.WithPowerCommands(cfg.Handlers.AllowPower)),
		Content: handlers.NewContentWriter(chatProv, handlers.ExecRunner{},
			handlers.WithContentDir(cfg.Handlers.ContentDir),
			handlers.WithEditor(cfg.Handlers.Editor)),
		Files: handlers.NewFileSearcher(
			handlers.WithSearchRoot(cfg.Handlers.SearchRoot)),
		Tasks:   handlers.NewTaskHandler(store),
		Monitor: handlers.NewMonitor(),
	})

	dispatcher := dispatch.NewDispatcher(registry, resolver,
		dispatch.WithHandlerTimeout(cfg.Dispatch.HandlerTimeout),
		dispatch.WithSink(data.NewAuditSink(store)),
	)

	return &app{
		cfg:        cfg,
		sess:       sess,
		classifier: classifier,
		dispatcher: dispatcher,
		store:      store,
		events:     bus.New(),
	}, nil
}

func buildProvider(cfg *config.Config, name string) (llm.Provider, error) {
	pc, ok := cfg.LLM.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	provCfg := llm.DefaultConfig(name)
	if pc.Endpoint != "" {
		provCfg.Endpoint = pc.Endpoint
	}
	if pc.Model != "" {
		provCfg.Model = pc.Model
	}
	if pc.TimeoutSec > 0 {
		provCfg.Timeout = time.Duration(pc.TimeoutSec) * time.Second
	}
	provCfg.APIKey = pc.APIKey

	switch name {
	case "cohere":
		return llm.NewCohereProvider(provCfg), nil
	case "groq":
		return llm.NewGroqProvider(provCfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// turn runs one utterance through the full pipeline and returns the
// spoken reply, or "" when there is nothing to say.
func (a *app) turn(ctx context.Context, utterance string) (string, bool) {
	a.events.Publish(bus.EventTurnStarted, "", utterance)
	a.events.Publish(bus.EventStatus, "", "thinking")

	batch := a.classifier.ClassifyBatch(ctx, utterance)
	a.events.Publish(bus.EventClassified, "", batch.Describe())

	if batch.HasExit() {
		return fmt.Sprintf("Okay %s, bye! Have a good day.", a.sess.Username), true
	}

	if batch.HasRealtime() {
		a.events.Publish(bus.EventStatus, "", "searching")
	} else if len(batch.Answers()) > 0 {
		a.events.Publish(bus.EventStatus, "", "answering")
	}

	report := a.dispatcher.Dispatch(ctx, batch)
	for _, res := range report.Results {
		a.events.Publish(bus.EventActionDone, report.TurnID, res.Directive.Verb.String())
	}

	reply := report.MergedAnswer
	if report.ResolveErr != nil {
		log.Warn().Err(report.ResolveErr).Msg("[CLI] Answer resolution failed")
		reply = "I could not look that up right now."
	}
	if reply == "" && len(report.Results) > 0 {
		if failed := report.FailedActions(); len(failed) > 0 {
			reply = fmt.Sprintf("Done, but %d of %d actions failed.", len(failed), len(report.Results))
		} else {
			reply = "Done."
		}
	}
	if report.Answered {
		a.events.Publish(bus.EventAnswered, report.TurnID, "")
	}
	a.events.Publish(bus.EventTurnDone, report.TurnID, "")
	a.events.Publish(bus.EventStatus, "", "idle")
	return reply, false
}

func runRepl(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		a.events.Subscribe("", func(e bus.Event) {
			fmt.Println(statusStyle.Render(fmt.Sprintf("  · %s %s", e.Type, e.Detail)))
		})
	}

	var bridge *voice.Bridge
	if voiceEnabled || a.cfg.Voice.Enabled {
		bridge = voice.NewBridge(voice.BridgeConfig{
			Endpoint:      a.cfg.Voice.BridgeURL,
			ReconnectWait: time.Duration(a.cfg.Voice.ReconnectDelay) * time.Second,
			MaxReconnects: a.cfg.Voice.MaxReconnects,
		})
		bridge.OnTranscript = func(text string) {
			fmt.Printf("%s %s\n", nameStyle.Render(a.sess.Username+":"), text)
			reply, exit := a.turn(ctx, text)
			if reply != "" {
				printReply(a.sess.AssistantName, reply)
				if err := bridge.Speak(reply); err != nil {
					log.Warn().Err(err).Msg("[CLI] Speak failed")
				}
			}
			if exit {
				stop()
			}
		}
		if err := bridge.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("[CLI] Speech bridge unavailable, keyboard only")
			bridge = nil
		} else {
			defer bridge.Close()
			a.events.Subscribe(bus.EventStatus, func(e bus.Event) {
				if err := bridge.Status(e.Detail); err != nil {
					log.Debug().Err(err).Msg("[CLI] Status push failed")
				}
			})
		}
	}

	fmt.Println(nameStyle.Render(fmt.Sprintf("%s v%s", a.sess.AssistantName, version)))
	fmt.Println(statusStyle.Render("Type a request, or \"exit\" to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		a.events.Publish(bus.EventStatus, "", "listening")
		fmt.Print(nameStyle.Render(a.sess.Username + "> "))
		if !scanner.Scan() {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, exit := a.turn(ctx, line)
		if reply != "" {
			printReply(a.sess.AssistantName, reply)
			if bridge != nil {
				if err := bridge.Speak(reply); err != nil {
					log.Warn().Err(err).Msg("[CLI] Speak failed")
				}
			}
		}
		if exit {
			return nil
		}
	}
	return scanner.Err()
}

func printReply(name, reply string) {
	fmt.Printf("%s %s\n", nameStyle.Render(name+":"), answerStyle.Render(reply))
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <utterance>",
		Short: "Run one utterance through the pipeline and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			reply, _ := a.turn(cmd.Context(), strings.Join(args, " "))
			if reply != "" {
				fmt.Println(reply)
			}
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <utterance>",
		Short: "Show how an utterance is split into directives, without executing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			batch := a.classifier.ClassifyBatch(cmd.Context(), strings.Join(args, " "))
			for _, d := range batch {
				fmt.Printf("%-16s %s\n", d.Verb, d.Argument)
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *cfg
			for name, pc := range shown.LLM.Providers {
				if pc.APIKey != "" {
					pc.APIKey = "***"
					shown.LLM.Providers[name] = pc
				}
			}
			out, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			if cfgPath != "" {
				fmt.Println(cfgPath)
				return
			}
			fmt.Println(cfg.GetDataDir() + "/config.yaml")
		},
	})
	return cmd
}
