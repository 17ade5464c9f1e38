package analyst

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rawitjan/Forte-hackathon/internal/config"
	"github.com/rawitjan/Forte-hackathon/internal/confluence"
	"github.com/rawitjan/Forte-hackathon/internal/session"
)

const greeting = "Hello! I am the Forte AI Analyst. Describe your business need and I will help you turn it into a BRD. You can also attach documents with /attach."

// Run starts the interactive console loop. The generated document is
// held here, by the caller of the pipeline, and only here.
func (a *Analyst) Run() error {
	fmt.Println("=== Forte AI Analyst ===")
	fmt.Printf("Session: %s\n", a.SessionID())
	fmt.Printf("Mode: %s\n", a.Mode())
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()
	fmt.Printf("Analyst: %s\n\n", greeting)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := context.Background()

	var finalDoc string

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := a.handleCommand(ctx, input, &finalDoc)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				a.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		a.converseOnce(ctx, input)
	}

	fmt.Println("Goodbye!")
	return nil
}

// converseOnce runs one conversational turn and prints the outcome. A
// gateway failure is rendered as an apologetic assistant turn so the
// conversation keeps going.
func (a *Analyst) converseOnce(ctx context.Context, input string) {
	result := a.Respond(ctx, input)
	if result.Failure != nil {
		apology := FallbackReply(result.Failure)
		a.RecordAssistant(ctx, apology)
		fmt.Printf("Analyst: %s\n\n", apology)
		return
	}
	fmt.Printf("Analyst: %s\n\n", result.Reply)
}

// handleCommand handles special commands
func (a *Analyst) handleCommand(ctx context.Context, cmd string, finalDoc *string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		a.StartNewSession()
		fmt.Println("Started new session:", a.SessionID())
		*finalDoc = ""
		return false, nil

	case "/mode":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /mode <%s>", strings.Join(config.Modes(), "|"))
		}
		mode := parts[1]
		known := false
		for _, m := range config.Modes() {
			if m == mode {
				known = true
				break
			}
		}
		if !known {
			return false, fmt.Errorf("unknown mode: %s", mode)
		}
		a.SwitchMode(mode)
		*finalDoc = ""
		fmt.Printf("Mode switched to %s. Fresh session: %s\n", mode, a.SessionID())
		return false, nil

	case "/sessions":
		summaries := a.ListSessions(ctx)
		if len(summaries) == 0 {
			fmt.Println("No stored sessions.")
			return false, nil
		}
		fmt.Println("\nRecent sessions:")
		for i, s := range summaries {
			title := s.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%d. %s  %s  %s\n", i+1, s.ID, s.CreatedAt.Format("2006-01-02 15:04"), title)
		}
		fmt.Println()
		return false, nil

	case "/load":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /load <session-id>")
		}
		count := a.LoadSession(ctx, parts[1])
		*finalDoc = ""
		fmt.Printf("Loaded session %s (%d messages)\n", parts[1], count)
		for _, msg := range a.Messages() {
			if session.IsAttachment(msg.Content) {
				fmt.Printf("  [file attached: %s]\n", session.AttachmentName(msg.Content))
				continue
			}
			fmt.Printf("  %s: %s\n", msg.Role, firstLine(msg.Content))
		}
		return false, nil

	case "/attach":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /attach <path-to-.txt-or-.md>")
		}
		ack, err := a.AttachFile(ctx, parts[1])
		if err != nil {
			return false, err
		}
		fmt.Printf("Analyst: %s\n\n", ack)
		return false, nil

	case "/voice":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /voice <path-to-wav>")
		}
		audio, err := os.ReadFile(parts[1])
		if err != nil {
			return false, fmt.Errorf("failed to read audio: %w", err)
		}
		text, fresh := a.Transcribe(ctx, audio)
		if !fresh {
			fmt.Println("That recording was already processed.")
			return false, nil
		}
		fmt.Printf("Transcribed: %s\n", firstLine(text))
		a.converseOnce(ctx, text)
		return false, nil

	case "/generate":
		doc, err := a.GenerateDocument(ctx, func(status string) {
			fmt.Println("  " + status)
		})
		if err != nil {
			return false, fmt.Errorf("generation failed: %w", err)
		}
		*finalDoc = doc
		fmt.Println("\n--- Business Requirements Document ---")
		fmt.Println(doc)
		fmt.Println("--- End of document ---")
		fmt.Println("Use /publish to push it to Confluence.")
		return false, nil

	case "/publish":
		if *finalDoc == "" {
			return false, fmt.Errorf("no document to publish, run /generate first")
		}
		parentID := ""
		if len(parts) > 1 {
			parentID = parts[1]
		}
		title := confluence.PageTitle(*finalDoc, "BRD - New Project")
		link, err := a.wiki.CreatePage(ctx, title, *finalDoc, parentID)
		if err != nil {
			return false, fmt.Errorf("failed to publish: %w", err)
		}
		fmt.Printf("Published %q: %s\n", title, link)
		return false, nil

	case "/pages":
		pages, err := a.wiki.ListPages(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to list pages: %w", err)
		}
		fmt.Println("\nConfluence pages (use an id as /publish argument):")
		for i, p := range pages {
			fmt.Printf("%d. %s  %s\n", i+1, p.ID, p.Title)
		}
		fmt.Println()
		return false, nil

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /quit, /exit          - Exit")
		fmt.Println("  /new                  - Start a new session")
		fmt.Println("  /mode <mode>          - Switch operating mode (" + strings.Join(config.Modes(), "|") + ")")
		fmt.Println("  /sessions             - List recent stored sessions")
		fmt.Println("  /load <id>            - Resume a stored session")
		fmt.Println("  /attach <path>        - Attach a .txt/.md document as context")
		fmt.Println("  /voice <path>         - Transcribe a wav recording and send it")
		fmt.Println("  /generate             - Generate the BRD from the conversation")
		fmt.Println("  /pages                - List Confluence pages")
		fmt.Println("  /publish [parent-id]  - Publish the generated BRD to Confluence")
		fmt.Println("  /help                 - Show this help message")
		return false, nil

	default:
		return false, nil
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
