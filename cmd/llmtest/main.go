package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Test conversation with multiple turns
	messages := []qualify.ChatMessage{
		{Role: qualify.ChatRoleUser, Content: "Hi, I'm looking for help automating my marketing. Where do I start?"},
		{Role: qualify.ChatRoleAssistant, Content: "Happy to help! Could you tell me a bit about your business and what parts of your marketing feel most manual today?"},
		{Role: qualify.ChatRoleUser, Content: "We're a 15-person agency and our email follow-ups eat hours every week."},
	}

	systemPrompt := []string{
		"You are a friendly consulting assistant. Keep responses brief and helpful.",
	}

	req := qualify.LLMRequest{
		System:      systemPrompt,
		Messages:    messages,
		MaxTokens:   200,
		Temperature: 0.7,
	}

	fmt.Println("LLM Provider Test")
	fmt.Println("-----------------")

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		fmt.Println("Skipping Gemini test (GEMINI_API_KEY not set)")
		return
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	geminiClient, err := qualify.NewGeminiLLMClient(ctx, geminiKey, model)
	if err != nil {
		log.Fatalf("failed to create Gemini client: %v", err)
	}
	defer func() { _ = geminiClient.Close() }()

	start := time.Now()
	resp, err := geminiClient.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("Gemini error: %v", err)
	}

	fmt.Printf("Gemini response (%v):\n%s\n", elapsed.Round(time.Millisecond), resp.Text)
	fmt.Printf("Tokens: in=%d, out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
}
