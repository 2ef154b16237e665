package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"careerbot/internal/common/logger"
	"careerbot/internal/models"
	"careerbot/internal/session"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot in the terminal",
	Long: `chat runs the conversation in the terminal over the same session service
the HTTP API uses. Stage buttons become a numbered menu and the forms become
prompts. Type bye to restart the conversation, or press Ctrl-D to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// keep library logs off the conversation
	quiet := logger.NewStructured("error", cfg.Logging.Format)
	rt, err := buildRuntime(ctx, cfg, quiet, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	return newConsole(rt.service, os.Stdin, cmd.OutOrStdout()).run(ctx)
}

// console renders a session as a line-based terminal dialogue.
type console struct {
	svc *session.Service
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(svc *session.Service, in io.Reader, out io.Writer) *console {
	return &console{svc: svc, in: bufio.NewScanner(in), out: out}
}

func (c *console) run(ctx context.Context) error {
	reply, err := c.svc.Start(ctx)
	if err != nil {
		return err
	}
	c.print(reply.Messages)
	sess := reply.Session

	for {
		reply, err = c.turn(ctx, sess)
		if err == io.EOF {
			fmt.Fprintln(c.out)
			return c.svc.End(ctx, sess.ID)
		}
		if err != nil {
			if scanErr := c.in.Err(); scanErr != nil {
				return scanErr
			}
			fmt.Fprintf(c.out, "! %v\n", err)
			continue
		}
		c.print(reply.Messages)
		sess = reply.Session
	}
}

// turn reads whatever the current control asks for and submits it.
func (c *console) turn(ctx context.Context, sess *models.Session) (*session.Reply, error) {
	switch sess.Control {
	case models.ControlStageButtons:
		for i, stage := range models.Stages {
			fmt.Fprintf(c.out, "  [%d] %s\n", i+1, stage)
		}
		choice, err := c.prompt("stage> ")
		if err != nil {
			return nil, err
		}
		stage, ok := pickStage(choice)
		if !ok {
			return c.svc.Send(ctx, sess.ID, choice)
		}
		return c.svc.SelectStage(ctx, sess.ID, stage)

	case models.ControlUndergraduateForm:
		major, err := c.prompt("major> ")
		if err != nil {
			return nil, err
		}
		year, err := c.prompt(fmt.Sprintf("year (%s)> ", strings.Join(models.YearsOfStudy, ", ")))
		if err != nil {
			return nil, err
		}
		return c.svc.SubmitUndergraduate(ctx, sess.ID, major, pickYear(year))

	case models.ControlPostgraduateForm:
		field, err := c.prompt("field> ")
		if err != nil {
			return nil, err
		}
		return c.svc.SubmitPostgraduate(ctx, sess.ID, field)
	}

	text, err := c.prompt("you> ")
	if err != nil {
		return nil, err
	}
	return c.svc.Send(ctx, sess.ID, text)
}

func (c *console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *console) print(msgs []models.Message) {
	for _, m := range msgs {
		fmt.Fprintf(c.out, "bot> %s\n", m.Text)
	}
}

// pickStage accepts a menu number or a stage name.
func pickStage(choice string) (models.Stage, bool) {
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(models.Stages) {
		return models.Stages[n-1], true
	}
	for _, stage := range models.Stages {
		if strings.EqualFold(choice, string(stage)) {
			return stage, true
		}
	}
	return "", false
}

// pickYear accepts "2", "2nd" or "2nd Year".
func pickYear(input string) string {
	for i, year := range models.YearsOfStudy {
		if strings.EqualFold(input, year) || input == strconv.Itoa(i+1) || strings.EqualFold(input, strings.Fields(year)[0]) {
			return year
		}
	}
	return input
}
