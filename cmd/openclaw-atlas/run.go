package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	agenttools "github.com/yaoshengwang/openclaw/pkg/agent/tools"
	"github.com/yaoshengwang/openclaw/pkg/atlas"
	appconfig "github.com/yaoshengwang/openclaw/pkg/config"
	"github.com/yaoshengwang/openclaw/pkg/llm/openai"
	"github.com/yaoshengwang/openclaw/pkg/llm/tokenizer"
	"github.com/yaoshengwang/openclaw/pkg/logging"
	"github.com/yaoshengwang/openclaw/pkg/tools/browser"
	atlastool "github.com/yaoshengwang/openclaw/pkg/tools/atlas"
)

// answer is a reply and where it came from.
type answer struct {
	Text   string
	TookMs int64
	Source string
}

// app wires the Atlas runner to its browser collaborators.
type app struct {
	controller *browser.Controller
	lifecycle  *browser.Lifecycle
	runner     *atlas.Runner
	gate       atlas.GateOptions
	log        *logging.Logger
}

func newApp(section *appconfig.AtlasSection, cli *CLIConfig, log *logging.Logger) *app {
	controller := browser.NewController(log)
	lifecycle := browser.NewLifecycle(launchLookup(section), log)

	runner := atlas.NewRunner(section, lifecycle, controller, log,
		atlas.WithPolicy(section.Policy()),
		atlas.WithChatURL(section.GetChatURL()),
	)

	return &app{
		controller: controller,
		lifecycle:  lifecycle,
		runner:     runner,
		gate: atlas.GateOptions{
			Resolver:          section,
			Profile:           cli.Profile,
			Sandboxed:         cli.Sandboxed,
			IsTestEnvironment: atlas.DetectTestEnvironment(os.Getenv),
		},
		log: log,
	}
}

// launchLookup maps config profiles with an executable to launch specs.
func launchLookup(section *appconfig.AtlasSection) browser.LaunchLookup {
	return func(name string) (browser.LaunchSpec, bool) {
		profile, ok := section.GetProfile(name)
		if !ok || profile.AttachOnly() {
			return browser.LaunchSpec{}, false
		}
		return browser.LaunchSpec{
			Executable: profile.Executable,
			Port:       profile.DebugPort,
		}, true
	}
}

// shutdown drops CDP connections and stops any browser this process launched.
func (a *app) shutdown() {
	if err := a.controller.Shutdown(); err != nil {
		a.log.Warnf("controller shutdown: %v", err)
	}
	a.lifecycle.Shutdown()
}

func run(ctx context.Context, cli *CLIConfig) error {
	if err := appconfig.Initialize(cli.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	section := appconfig.GetAtlas()
	if section == nil {
		return fmt.Errorf("atlas configuration section is missing")
	}

	if cli.ProfilesFile != "" {
		n, err := section.ImportProfilesFile(cli.ProfilesFile)
		if err != nil {
			return err
		}
		if err := appconfig.Global().SaveAll(); err != nil {
			return fmt.Errorf("failed to save imported profiles: %w", err)
		}
		fmt.Fprintf(os.Stderr, "%s\n", mutedStyle.Render(fmt.Sprintf("imported %d profile(s)", n)))
	}

	logger, err := logging.NewLogger("atlas")
	if err != nil {
		logger.Warnf("file logging unavailable: %v", err)
	}
	defer logger.Close()

	a := newApp(section, cli, logger)
	defer a.shutdown()

	if cli.ToolCall {
		return a.runToolCall(ctx, os.Stdin, os.Stdout)
	}

	prompt, err := readPrompt(cli.Prompt, os.Stdin)
	if err != nil {
		return err
	}

	ans, err := waitWithSpinner(os.Stderr, "Waiting for Atlas...", func() (answer, error) {
		return a.answer(ctx, cli, prompt)
	})
	if err != nil {
		return err
	}

	renderReply(os.Stdout, ans.Text, cli.Highlight)

	if cli.Copy {
		if err := clipboard.WriteAll(ans.Text); err != nil {
			logger.Warnf("clipboard copy failed: %v", err)
			fmt.Fprintln(os.Stderr, errorStyle.Render("could not copy reply to clipboard"))
		}
	}

	tok, err := tokenizer.New()
	if err != nil {
		logger.Debugf("tokenizer unavailable, estimating: %v", err)
	}
	fmt.Fprintln(os.Stderr, summaryLine(ans, tok.CountTokens(prompt), tok.CountTokens(ans.Text)))
	return nil
}

// answer tries Atlas and, when allowed, falls back to the LLM API.
func (a *app) answer(ctx context.Context, cli *CLIConfig, prompt string) (answer, error) {
	var atlasErr error
	if atlas.CanUse(a.gate) {
		res, err := a.runner.RunPrompt(ctx, atlas.Request{
			Prompt:    prompt,
			Timeout:   cli.Timeout,
			URL:       cli.URL,
			Profile:   cli.Profile,
			Sandboxed: cli.Sandboxed,
		})
		if err == nil {
			return answer{Text: res.Text, TookMs: res.TookMs, Source: "atlas"}, nil
		}
		atlasErr = err
	} else {
		atlasErr = &atlas.UnavailableError{Reason: "atlas is disabled for this profile or environment"}
	}

	if ctx.Err() != nil || !fallbackEnabled(cli.Fallback, appconfig.GetLLM()) {
		return answer{}, atlasErr
	}

	a.log.Warnf("falling back to LLM API: %v", atlasErr)
	provider, err := appconfig.BuildProvider(cli.Model, cli.BaseURL, cli.APIKey, openai.DefaultModel)
	if err != nil {
		return answer{}, fmt.Errorf("%v; fallback unavailable: %w", atlasErr, err)
	}

	start := time.Now()
	text, err := provider.Complete(ctx, prompt)
	if err != nil {
		return answer{}, fmt.Errorf("%v; fallback failed: %w", atlasErr, err)
	}
	return answer{
		Text:   text,
		TookMs: time.Since(start).Milliseconds(),
		Source: provider.GetModel(),
	}, nil
}

// runToolCall executes one <tool> call read from r.
func (a *app) runToolCall(ctx context.Context, r io.Reader, w io.Writer) error {
	tool := atlastool.NewPromptTool(a.runner, a.gate)
	if !tool.ShouldShow() {
		return fmt.Errorf("%s is not available in this environment", tool.Name())
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read tool call: %w", err)
	}

	out, meta, err := agenttools.NewRegistry(tool).Dispatch(ctx, string(raw))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	a.log.Debugf("tool call finished: %v", meta)
	return nil
}

func fallbackEnabled(flagSet bool, section *appconfig.LLMSection) bool {
	return flagSet || (section != nil && section.FallbackEnabled())
}

// readPrompt returns the -prompt value, or stdin when it is empty.
func readPrompt(flagValue string, stdin io.Reader) (string, error) {
	prompt := strings.TrimSpace(flagValue)
	if prompt == "" && stdin != nil {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(raw))
	}
	if prompt == "" {
		return "", errors.New("no prompt given: use -prompt or pipe text on stdin")
	}
	return prompt, nil
}
