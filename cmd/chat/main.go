// Command chat is an interactive terminal client for the docfill API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fatih/color"
)

// maxHistory is how many prior turns are sent with each message.
const maxHistory = 20

func main() {
	api := flag.String("api", envOr("DOCFILL_API_URL", "http://localhost:8080"), "docfill API base URL")
	outDir := flag.String("out", ".", "directory for generated documents")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, newClient(*api), *outDir); err != nil && !errors.Is(err, terminal.InterruptErr) {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client, outDir string) error {
	types, err := c.documentTypes(ctx)
	if err != nil {
		return fmt.Errorf("list document types: %w", err)
	}
	if len(types) == 0 {
		return errors.New("no document types available")
	}

	code := types[0].Code
	if len(types) > 1 {
		options := make([]string, len(types))
		for i, t := range types {
			options[i] = t.Name + " (" + t.Code + ")"
		}
		var idx int
		if err := survey.AskOne(&survey.Select{Message: "Оберіть документ:", Options: options}, &idx); err != nil {
			return err
		}
		code = types[idx].Code
	}

	started, err := c.start(ctx, code)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	sessionID := started.Session.ID
	color.Cyan("\n%s\n", started.Greeting)
	color.HiBlack("Команди: /ask <питання>, /summary, /quit\n")

	var history []chatMessage
	history = append(history, chatMessage{Role: "assistant", Content: started.Greeting})

	for {
		var line string
		if err := survey.AskOne(&survey.Input{Message: "Ви:"}, &line, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		switch line {
		case "/quit":
			return nil
		case "/summary":
			s, err := c.summary(ctx, sessionID)
			if err != nil {
				color.Red("%v", err)
				continue
			}
			color.Cyan("%s\n", s.Summary)
			continue
		}

		if q, ok := strings.CutPrefix(line, "/ask "); ok {
			out, err := c.ask(ctx, sessionID, strings.TrimSpace(q), history)
			if err != nil {
				color.Red("%v", err)
				continue
			}
			color.Magenta("%s\n", out.Message)
			continue
		}

		out, err := c.chat(ctx, sessionID, line, history)
		if err != nil {
			color.Red("%v", err)
			continue
		}
		if out.Fallback {
			color.Yellow("%s\n", out.Message)
		} else {
			color.Cyan("%s\n", out.Message)
		}

		history = append(history,
			chatMessage{Role: "user", Content: line},
			chatMessage{Role: "assistant", Content: out.Message},
		)
		if len(history) > maxHistory {
			history = history[len(history)-maxHistory:]
		}

		if out.Artifact != nil {
			path, err := save(ctx, c, out.Artifact.ID, outDir)
			if err != nil {
				color.Red("download: %v", err)
				continue
			}
			color.Green("Документ збережено: %s\n", path)

			var again bool
			if err := survey.AskOne(&survey.Confirm{Message: "Внести зміни?", Default: false}, &again); err != nil {
				return err
			}
			if !again {
				return nil
			}
		}
	}
}

func save(ctx context.Context, c *client, artifactID, dir string) (string, error) {
	view, err := c.artifact(ctx, artifactID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifactID+".docx")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := c.download(ctx, view.DownloadURL, f); err != nil {
		return "", err
	}
	return path, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
