// Package main is an interactive terminal client for the support bot.
// It wires the pipeline directly against the database and LLM providers,
// with no HTTP server or NATS in between.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bookleaf/support-platform/internal/agent"
	"github.com/bookleaf/support-platform/internal/config"
	"github.com/bookleaf/support-platform/internal/identity"
	"github.com/bookleaf/support-platform/internal/knowledge"
	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/model"
	"github.com/bookleaf/support-platform/internal/service"
	"github.com/bookleaf/support-platform/internal/store"
	"github.com/bookleaf/support-platform/internal/tools"
	"github.com/bookleaf/support-platform/pkg/logger"
)

func main() {
	platformFlag := flag.String("platform", "web", "platform to simulate (web, whatsapp, instagram, email)")
	senderFlag := flag.String("sender", "cli_user", "sender handle, phone, or email")
	flag.Parse()

	platform, err := model.ParsePlatform(*platformFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid platform: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()

	// Surface only warnings and errors so the conversation stays readable.
	log, err := logger.New("warn")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	oracle, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create oracle client: %v\n", err)
		os.Exit(1)
	}

	var identityOracle llm.Client = oracle
	if cfg.AnthropicAPIKey != "" {
		if anthropicClient, err := llm.NewAnthropicClient(cfg.AnthropicAPIKey); err == nil {
			identityOracle = anthropicClient
		}
	}

	embedder, err := knowledge.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create embedder: %v\n", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry(db, embedder, db, db, log)
	evaluator := agent.NewEvaluator(agent.EvaluatorConfig{
		LowConfidence:     cfg.LowConfidence,
		HighConfidence:    cfg.HighConfidence,
		HandoverThreshold: cfg.HandoverThreshold,
	})
	orchestrator := agent.NewOrchestrator(oracle, registry, evaluator, log,
		agent.WithModel(cfg.OracleModel),
		agent.WithMaxCycles(cfg.MaxToolCycles),
	)
	resolver := identity.NewResolver(db, db, identityOracle, log,
		identity.WithThreshold(cfg.IdentityThreshold),
		identity.WithOracleModel(cfg.IdentityModel),
	)
	botService := service.NewBotService(resolver, orchestrator, nil, log)

	threadID := fmt.Sprintf("%s_%s", platform, *senderFlag)

	fmt.Println("BookLeaf support bot")
	fmt.Printf("platform: %s | sender: %s\n", platform, *senderFlag)
	fmt.Println("type a query and press Enter; type 'quit' or 'exit' to leave")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		switch strings.ToLower(query) {
		case "quit", "exit", "q":
			fmt.Println("goodbye")
			return
		}

		outcome, err := botService.RunCustomerBot(ctx, query, platform, *senderFlag, threadID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Printf("\nbot> %s\n", outcome.Response)
		if outcome.Handover {
			fmt.Printf("(flagged for human handover, confidence %.2f)\n", outcome.Confidence)
		}
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
}
