package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"webGuide/internal/cli/commands"
	"webGuide/internal/cli/ui"
	"webGuide/internal/database"
	"webGuide/internal/logger"
	"webGuide/internal/runner"

	"github.com/chzyer/readline"
)

type CLI struct {
	repo        *database.RunRepository
	log         *logger.Zap
	runner      *runner.Runner
	rl          *readline.Instance
	runHandler  *commands.RunHandler
	showHandler *commands.ShowHandler
	logsHandler *commands.LogsHandler
}

func New(repo *database.RunRepository, log *logger.Zap, r *runner.Runner) *CLI {
	cli := &CLI{
		repo:   repo,
		log:    log,
		runner: r,
	}

	// Инициализация handlers
	cli.runHandler = commands.NewRunHandler(repo, r, log.Logger)
	cli.showHandler = commands.NewShowHandler(repo, log.Logger)
	cli.logsHandler = commands.NewLogsHandler(repo, log.Logger)

	// Инициализация readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".webguide-history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Warn("Не удалось инициализировать readline, будет использован fallback режим")
	} else {
		cli.rl = rl
	}

	return cli
}

func (c *CLI) readLine() (string, error) {
	if c.rl != nil {
		return c.rl.Readline()
	}
	// Fallback для работы без readline
	reader := bufio.NewReader(os.Stdin)
	println(ui.ColorCyan + "> " + ui.ColorReset)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) closeReadline() {
	if c.rl != nil {
		c.rl.Close()
	}
}

func (c *CLI) Run(ctx context.Context) {
	ui.PrintWelcome()
	defer c.closeReadline()

	for {
		// Проверка отмены контекста
		select {
		case <-ctx.Done():
			println("\n" + ui.ColorCyan + ui.IconWave + " Получен сигнал завершения..." + ui.ColorReset)
			return
		default:
		}

		line, err := c.readLine()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		c.handleCommand(ctx, line)
	}
}

func (c *CLI) handleCommand(ctx context.Context, line string) {
	switch {
	case line == "exit":
		println(ui.ColorCyan + ui.IconWave + " До свидания!" + ui.ColorReset)
		os.Exit(0)

	case line == "clear":
		ui.ClearScreen()

	case strings.HasPrefix(line, "task "):
		userInput := strings.TrimPrefix(line, "task ")
		c.runHandler.Create(userInput)

	case line == "runs":
		c.runHandler.List()

	case strings.HasPrefix(line, "run "):
		idStr := strings.TrimPrefix(line, "run ")
		c.runHandler.Run(ctx, idStr)

	case strings.HasPrefix(line, "show "):
		idStr := strings.TrimPrefix(line, "show ")
		c.showHandler.Show(idStr)

	case strings.HasPrefix(line, "logs "):
		idStr := strings.TrimPrefix(line, "logs ")
		c.logsHandler.Show(idStr)

	case strings.HasPrefix(line, "report "):
		idStr := strings.TrimPrefix(line, "report ")
		c.showHandler.Report(idStr)

	default:
		ui.PrintHelp()
	}
}
