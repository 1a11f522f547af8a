package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptRetry    = "Retry"
	PromptSkip     = "Skip this question"
	PromptFinish   = "Finish the interview"
	PromptWithdraw = "Withdraw"

	commandFinish   = "/finish"
	commandWithdraw = "/withdraw"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("candidate", "c", "", "candidate name")
	runCmd.Flags().String("job", "", "job profile id from the job file")
	runCmd.Flags().String("resume", "", "resume an interview by id from the configured storage")
}

// run is the interactive interview loop.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-interviewer", zap.String("version", resolvedVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	s, err := newStack(ctx, config, prometheus.NewRegistry(), logger)
	if err != nil {
		logger.Fatal("building the interview service", zap.Error(err))
	}
	defer s.Close()

	state, err := openInterview(ctx, cmd, s)
	if err != nil {
		logger.Fatal("opening an interview", zap.Error(err))
	}
	logger.Info("interview ready", zap.String("interview_id", state.ID), zap.String("phase", string(state.Phase)))

	if err := interact(ctx, s.service, state, logger); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("interview failed", zap.Error(err), zap.String("interview_id", state.ID))
	}

	report, err := s.service.Report(ctx, state.ID)
	if err != nil {
		logger.Fatal("building the report", zap.Error(err))
	}
	pretty, _ = json.MarshalIndent(report, "", "  ")
	logger.Info(string(pretty), zap.String("recommendation", string(report.Recommendation)))
}

func openInterview(ctx context.Context, cmd *cobra.Command, s *stack) (*interview.State, error) {
	if id := cmd.Flag("resume").Value.String(); id != "" {
		return s.service.Get(ctx, id)
	}

	candidate := cmd.Flag("candidate").Value.String()
	if candidate == "" {
		p := promptui.Prompt{
			Label:    "Candidate name",
			Validate: notBlank,
		}
		v, err := p.Run()
		if err != nil {
			return nil, err
		}
		candidate = v
	}

	jobID := cmd.Flag("job").Value.String()
	if ids := s.jobs.IDs(); jobID == "" && len(ids) > 1 {
		p := promptui.Select{
			Label: "Job profile",
			Items: ids,
		}
		_, v, err := p.Run()
		if err != nil {
			return nil, err
		}
		jobID = v
	}

	return s.service.Create(ctx, candidate, jobID)
}

// interact drives the session until it terminates or the user exits.
func interact(ctx context.Context, svc *session.Service, state *interview.State, logger *zap.Logger) error {
	id := state.ID

	if state.Phase == interview.PhaseCreated {
		_, text, err := svc.Disclose(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(text)
		state, err = svc.Get(ctx, id)
		if err != nil {
			return err
		}
	}

	if state.Phase == interview.PhaseDisclosureDone {
		p := promptui.Prompt{Label: "Do you agree to continue (yes/no)"}
		reply, err := p.Run()
		if err != nil {
			return withdrawOnInterrupt(ctx, svc, id, err)
		}
		if state, err = svc.Consent(ctx, id, reply); err != nil {
			return err
		}
	}

	for !state.Terminated {
		q, err := svc.NextQuestion(ctx, id)
		if err != nil {
			if !errors.Is(err, interview.ErrQuestionUnavailable) {
				return err
			}
			logger.Warn("question unavailable", zap.Error(err))
			if state, err = afterFailure(ctx, svc, id, PromptRetry, PromptFinish, PromptWithdraw); err != nil {
				return err
			}
			continue
		}

		fmt.Printf("\n[%d] %s\n", q.Number, q.Text)
		p := promptui.Prompt{
			Label:    fmt.Sprintf("Answer (%s or %s)", commandFinish, commandWithdraw),
			Validate: notBlank,
		}
		answer, err := p.Run()
		if err != nil {
			return withdrawOnInterrupt(ctx, svc, id, err)
		}

		switch strings.TrimSpace(answer) {
		case commandFinish:
			state, err = svc.Finish(ctx, id)
			if err != nil {
				return err
			}
			continue
		case commandWithdraw:
			state, err = svc.Withdraw(ctx, id, "withdrawn from the terminal")
			if err != nil {
				return err
			}
			continue
		}

		next, turn, err := svc.Answer(ctx, id, answer)
		if err != nil {
			if !errors.Is(err, interview.ErrEvaluationUnavailable) {
				return err
			}
			logger.Warn("evaluation unavailable; the answer was not recorded", zap.Error(err))
			if state, err = afterFailure(ctx, svc, id, PromptRetry, PromptSkip, PromptWithdraw); err != nil {
				return err
			}
			continue
		}
		state = next

		logger.Info("answer recorded",
			zap.Int("turn", turn.Number),
			zap.Float64("score", turn.Score),
			zap.Any("flags", turn.Flags),
		)
	}
	return nil
}

// afterFailure asks what to do after a capability failure.
func afterFailure(ctx context.Context, svc *session.Service, id string, items ...string) (*interview.State, error) {
	p := promptui.Select{
		Label: "The AI capability is unavailable. What next?",
		Items: items,
	}
	_, action, err := p.Run()
	if err != nil {
		return nil, withdrawOnInterrupt(ctx, svc, id, err)
	}

	switch action {
	case PromptRetry:
		return svc.Get(ctx, id)
	case PromptSkip:
		return svc.Skip(ctx, id, "skipped from the terminal after an evaluation failure")
	case PromptFinish:
		return svc.Finish(ctx, id)
	case PromptWithdraw:
		return svc.Withdraw(ctx, id, "withdrawn from the terminal")
	default:
		return nil, fmt.Errorf("invalid action: %s", action)
	}
}

func withdrawOnInterrupt(ctx context.Context, svc *session.Service, id string, err error) error {
	if !errors.Is(err, promptui.ErrInterrupt) && !errors.Is(err, promptui.ErrEOF) {
		return err
	}
	if _, werr := svc.Withdraw(context.WithoutCancel(ctx), id, "interrupted from the terminal"); werr != nil {
		return werr
	}
	return errExit
}

func notBlank(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

// redacted hides secrets before the config is logged.
func redacted(config *Config) *Config {
	c := *config
	if c.AI != nil {
		ai := *c.AI
		if ai.Gemini != nil {
			g := *ai.Gemini
			g.APIKey = mask(g.APIKey)
			ai.Gemini = &g
		}
		if ai.OpenAI != nil {
			o := *ai.OpenAI
			o.APIKey = mask(o.APIKey)
			ai.OpenAI = &o
		}
		c.AI = &ai
	}
	if c.ATS != nil {
		a := *c.ATS
		a.Token = mask(a.Token)
		c.ATS = &a
	}
	c.Storage.Redis.Password = mask(c.Storage.Redis.Password)
	return &c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
