package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
	_ "github.com/quorumlabs/peerpanel/src/ai/providers"
	"github.com/quorumlabs/peerpanel/src/api/config"
)

var (
	providersFlag = flag.String("providers", "openai", "Comma-separated provider list or 'all'")
	modeFlag      = flag.String("mode", "complete", "complete|extract|both")
	systemFlag    = flag.String("system", "", "Override system prompt")
	modelFlag     = flag.String("model", "", "Override model name")
	promptFlag    = flag.String("prompt", defaultPrompt, "User prompt for complete mode")
	contentFlag   = flag.String("content", defaultContent, "Source text for extract mode")
	timeoutFlag   = flag.Duration("timeout", 45*time.Second, "Per-provider timeout")
	tempFlag      = flag.Float64("temp", 0.2, "Completion temperature")
	maxLenFlag    = flag.Int("max-bytes", 1200, "Maximum bytes of output to print per response (0=unlimited)")
)

var allProviders = []string{
	"openai",
	"gemini",
	"claude",
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	providers := resolveProviders(*providersFlag)
	if len(providers) == 0 {
		log.Fatal("no providers specified")
	}

	aiEnv := config.LoadAIFromEnv()
	systemPrompt := pickFirst(*systemFlag, defaultSystemPrompt)
	model := pickFirst(*modelFlag, aiEnv.Model)

	mode, err := parseMode(*modeFlag)
	if err != nil {
		log.Fatalf("invalid mode: %v", err)
	}

	for _, provider := range providers {
		if err := runProvider(provider, mode, model, systemPrompt, aiEnv); err != nil {
			log.Printf("[%s] ERROR: %v", provider, err)
		}
	}
}

func runProvider(provider string, mode runMode, model, systemPrompt string, aiEnv config.AI) error {
	cfg := aicore.FactoryConfig{
		Provider:     provider,
		SystemPrompt: systemPrompt,
		Model:        model,
		Temperature:  *tempFlag,
		OpenAIKey:    aiEnv.OpenAIKey,
		ClaudeKey:    aiEnv.ClaudeKey,
		GeminiKey:    aiEnv.GeminiKey,
	}

	client, err := aicore.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("client init: %w", err)
	}

	fmt.Printf("=== %s ===\n", provider)
	if mode == modeComplete || mode == modeBoth {
		if err := executeCompleteTest(client, systemPrompt); err != nil {
			fmt.Printf("complete FAILED %v\n", err)
		}
	}
	if mode == modeExtract || mode == modeBoth {
		if err := executeExtractTest(client); err != nil {
			fmt.Printf("extract FAILED %v\n", err)
		}
	}
	return nil
}

func executeCompleteTest(client aicore.Client, systemPrompt string) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, []aicore.Message{
		{Role: aicore.RoleSystem, Content: systemPrompt},
		{Role: aicore.RoleUser, Content: *promptFlag},
	}, aicore.Options{
		Model:       pickFirst(*modelFlag),
		Temperature: *tempFlag,
	})
	if err != nil {
		return err
	}
	fmt.Printf("complete OK (%.1fs)\n%s\n", time.Since(start).Seconds(), truncate(reply, *maxLenFlag))
	return nil
}

func executeExtractTest(client aicore.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	schema := aicore.Schema{
		"primary_domain":  aicore.FieldString,
		"expertise_areas": aicore.FieldList,
		"career_level":    aicore.FieldString,
	}

	start := time.Now()
	out, err := aicore.ExtractStructured(ctx, client, *contentFlag, schema)
	if err != nil {
		return err
	}
	rendered := fmt.Sprintf("%v", out)
	fmt.Printf("extract OK (%.1fs)\n%s\n", time.Since(start).Seconds(), truncate(rendered, *maxLenFlag))
	return nil
}

func resolveProviders(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.EqualFold(raw, "all") {
		return append([]string{}, allProviders...)
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var out []string
	seen := map[string]struct{}{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func pickFirst(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseMode(input string) (runMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "complete":
		return modeComplete, nil
	case "extract":
		return modeExtract, nil
	case "both":
		return modeBoth, nil
	default:
		return modeComplete, errors.New("expected complete, extract, or both")
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:limit]) + "...(truncated)"
}

type runMode int

const (
	modeComplete runMode = iota
	modeExtract
	modeBoth
)

const (
	defaultPrompt  = "List three questions a grant review panel should ask about any research proposal."
	defaultContent = `Dr. Maria Alvarez is a Professor of Computational Biology at Bergen
University. Her research spans genome assembly algorithms, long-read
sequencing pipelines, and machine learning for variant calling. She has
published over 80 papers and leads the EU-funded DeepGenome consortium.`
)

const defaultSystemPrompt = "You are a concise assistant used for provider connectivity checks."
