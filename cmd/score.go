package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/filtering"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/recommend"
	"github.com/spigell/joblo/internal/resume"
)

const (
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptReportByCompany     = "Report by company"
	PromptMatchDetails        = "Show match details"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append all matches to exclude file"

	manualExcludeReason = "excluded from score results"
)

var errExit = errors.New("exit requested")

var scoreCmd = &cobra.Command{
	Use:   "score <resume>",
	Short: "Score every job against a résumé and list the best matches",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		score(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntP("top-k", "k", 0, "number of matches to show (default scoring.top-k)")
	scoreCmd.Flags().Bool("ai", false, "ask the configured AI provider for a second opinion on the matches")
	scoreCmd.Flags().BoolP("yes", "y", false, "print the matches and exit without prompting")
}

type session struct {
	*env
	out         io.Writer
	shortlist   *jobs.Jobs
	matches     []recommend.TopMatch
	assessments map[string]*ai.FitAssessment
}

func score(cmd *cobra.Command, resumePath string) {
	ctx := context.Background()
	e := setup(ctx)
	defer e.close(ctx)

	limit, _ := cmd.Flags().GetInt("top-k")
	if limit <= 0 {
		limit = e.config.Scoring.TopK
	}

	profile, err := e.extractor.ExtractFile(resumePath)
	if err != nil {
		e.logger.Fatal("parsing resume", zap.String("path", resumePath), zap.Error(err))
	}
	e.logger.Info("resume parsed", zap.String("name", profile.Name), zap.Strings("skills", profile.Skills))

	matches, err := e.recommender().TopMatchesForProfile(ctx, profile, limit)
	if err != nil {
		e.logger.Fatal("scoring jobs", zap.Error(err))
	}
	if len(matches) == 0 {
		e.logger.Info("exiting", zap.String("reason", "no jobs to score"))
		return
	}

	s := &session{env: e, out: cmd.OutOrStdout(), matches: matches}
	s.shortlist = &jobs.Jobs{Items: make([]*jobs.Job, 0, len(matches))}
	for _, m := range matches {
		s.shortlist.Items = append(s.shortlist.Items, m.Job)
	}

	if useAI, _ := cmd.Flags().GetBool("ai"); useAI || e.config.AI.Enabled {
		s.secondOpinion(ctx, profile)
	}

	s.print()

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return
	}

	for {
		items := []string{PromptReportByCompany, PromptMatchDetails, PromptMatchesToFile}
		if e.config.Filters.ExcludeFile != "" && s.shortlist.Len() > 0 {
			items = append(items, PromptAppendToExcludeFile)
		}
		prompt := promptui.Select{Label: "What next?", Items: append(items, PromptExit)}

		_, action, err := prompt.Run()
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			e.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// secondOpinion runs the AI step over the shortlist. Rejected matches are
// dropped and, when an exclude file is configured, remembered there.
func (s *session) secondOpinion(ctx context.Context, profile *resume.Profile) {
	s.config.AI.Enabled = true

	matcher, err := newAIMatcher(ctx, s.config.AI, s.logger)
	if err != nil {
		s.logger.Warn("skipping AI second opinion", zap.Error(err))
		return
	}

	deps := filtering.Deps{Logger: s.logger, Profile: profile, Matcher: matcher}
	approved, assessments, err := filtering.Run(ctx, s.config.Filters, deps, []filtering.Filter{filtering.NewAIFit()}, s.shortlist)
	if err != nil {
		s.logger.Warn("AI second opinion failed", zap.Error(err))
		return
	}

	s.shortlist = approved
	s.assessments = assessments
	s.keepShortlisted()
}

func (s *session) keepShortlisted() {
	kept := s.matches[:0]
	for _, m := range s.matches {
		if s.shortlist.FindByID(m.Job.ID) != nil {
			kept = append(kept, m)
		}
	}
	s.matches = kept
}

func (s *session) print() {
	for i, m := range s.matches {
		fmt.Fprintf(s.out, "%2d. %6.2f  %s\n", i+1, m.Match.Score, m.Job.Label())
		fmt.Fprintf(s.out, "           %s\n", m.Match.Reasoning)
		if a := s.assessments[m.Job.ID]; a != nil {
			fmt.Fprintf(s.out, "           AI: fit=%t score=%.2f %s\n", a.Fit, a.Score, a.Reason)
		}
	}
}

func (s *session) handleAction(action string) error {
	switch action {
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(s.shortlist.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("jobs count", s.shortlist.Len()))
		return nil
	case PromptMatchDetails:
		return s.details()
	case PromptMatchesToFile:
		filename, err := s.shortlist.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		s.logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) details() error {
	items := make([]string, 0, len(s.matches)+1)
	for _, m := range s.matches {
		items = append(items, m.Job.Label())
	}

	prompt := promptui.Select{
		Label: "Choose a match and press ENTER",
		Items: append(items, PromptBack),
	}
	_, selected, err := prompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	id := strings.Split(selected, " ")[0]
	for _, m := range s.matches {
		if m.Job.ID == id {
			return printJSON(s.out, m)
		}
	}
	return fmt.Errorf("there is no such job id %s", id)
}

func (s *session) appendToExcludeFile() error {
	path := s.config.Filters.ExcludeFile

	excluded, err := jobs.GetExcludedJobsFromFile(path)
	if err != nil {
		return err
	}
	excluded.Append(s.shortlist.ToExcluded(manualExcludeReason))
	if err := excluded.ToFile(path); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", s.shortlist.Len()))

	s.shortlist.Exclude(jobs.JobIDField, excluded.JobIDs())
	s.keepShortlisted()
	return nil
}
