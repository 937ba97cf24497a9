package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wellness-quiz/internal/app"
	"wellness-quiz/internal/domain"
	"wellness-quiz/internal/metrics"
)

func newQuestionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "question",
		Short: "Show the current question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return printQuestion(cmd.OutOrStdout(), rt.service)
		},
	}
}

func newAnswerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "answer [value...]",
		Short: "Answer the current question and continue",
		Long: "Answer the current question and continue. Numeric questions take a number, " +
			"single-choice questions take the option text, multi-choice questions take each " +
			"option as an argument or a comma-separated list. Without arguments the stored " +
			"answer (for example one built with toggle) is submitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var outcome app.Outcome
			if len(args) == 0 {
				outcome, err = rt.service.Advance(ctx)
			} else {
				q, qerr := rt.service.CurrentQuestion()
				if qerr != nil {
					return qerr
				}
				value, perr := parseAnswer(q, args)
				if perr != nil {
					return perr
				}
				outcome, err = rt.service.SubmitAndAdvance(ctx, value)
			}
			if err != nil {
				return err
			}
			if !outcome.Completed {
				return printQuestion(out, rt.service)
			}
			report, _, err := rt.service.ComputeAndRecord(ctx, outcome.Answers)
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		},
	}
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "toggle <option>",
		Short: "Add or remove an option of a multi-choice question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.service.Toggle(cmd.Context(), key, strings.Join(args, " ")); err != nil {
				return err
			}
			return printQuestion(cmd.OutOrStdout(), rt.service)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "question key (defaults to the current question)")
	return cmd
}

func newBackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Return to the previous question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.service.GoBack(cmd.Context()); err != nil {
				return err
			}
			return printQuestion(cmd.OutOrStdout(), rt.service)
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard all answers and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.service.Reset(cmd.Context()); err != nil {
				return err
			}
			return printQuestion(cmd.OutOrStdout(), rt.service)
		},
	}
}

func newResultsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Compute and record the metrics for a completed questionnaire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			out := cmd.OutOrStdout()

			report, _, err := rt.service.Results(cmd.Context())
			var incomplete *domain.IncompleteInputError
			if errors.As(err, &incomplete) {
				fmt.Fprintf(out, "Missing answer for %q, returning to that question.\n\n", incomplete.Key)
				if perr := printQuestion(out, rt.service); perr != nil {
					return perr
				}
				return err
			}
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		},
	}
}

// parseAnswer reads command arguments as an answer of the question's kind.
func parseAnswer(q domain.Question, args []string) (domain.Answer, error) {
	switch q.Kind {
	case domain.KindNumeric:
		n, err := strconv.ParseFloat(strings.TrimSpace(strings.Join(args, "")), 64)
		if err != nil {
			return nil, &domain.ValidationError{Key: q.Key, Reason: "expected a number"}
		}
		if !domain.Number(n).Finite() {
			return nil, &domain.ValidationError{Key: q.Key, Reason: domain.NumberNotFinite}
		}
		return domain.Number(n), nil
	case domain.KindMultiChoice:
		parts := args
		if len(args) == 1 {
			parts = strings.Split(args[0], ",")
		}
		sel := domain.Selection{}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				sel = append(sel, p)
			}
		}
		return sel, nil
	default:
		return domain.Choice(strings.TrimSpace(strings.Join(args, " "))), nil
	}
}

func printQuestion(w io.Writer, s *app.QuizService) error {
	if s.Complete() {
		fmt.Fprintln(w, "Questionnaire complete. Run `results` to see your metrics or `reset` to start over.")
		return nil
	}
	q, err := s.CurrentQuestion()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "[%d%%] %s\n", int(s.ProgressFraction()*100), q.Title)
	current, hasAnswer := s.CurrentAnswer()
	switch q.Kind {
	case domain.KindNumeric:
		if q.Placeholder != "" {
			fmt.Fprintf(w, "  (%s)\n", q.Placeholder)
		}
		if n, ok := current.(domain.Number); hasAnswer && ok && !n.Unanswered() {
			fmt.Fprintf(w, "  current: %g\n", float64(n))
		}
	default:
		for _, opt := range q.Options {
			mark := " "
			switch a := current.(type) {
			case domain.Choice:
				if string(a) == opt {
					mark = "*"
				}
			case domain.Selection:
				if a.Contains(opt) {
					mark = "x"
				}
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, opt)
		}
	}
	if s.IsLastStep() {
		fmt.Fprintln(w, "Answer to see your results.")
	}
	return nil
}

func printReport(w io.Writer, r metrics.Report) {
	fmt.Fprintln(w, "Your results")
	fmt.Fprintf(w, "  Basal metabolic rate: %.0f kcal/day\n", r.BMR)
	fmt.Fprintf(w, "  Daily calories:       %.0f kcal/day\n", r.DailyCalories)
	fmt.Fprintf(w, "  Calories for goal:    %.0f kcal/day (%s)\n", r.GoalCalories, r.Goal)
	fmt.Fprintf(w, "  Protein intake:       %.1f g/day\n", r.ProteinIntake)
	fmt.Fprintf(w, "  Ideal weight:         %.1f kg (%+.1f kg)\n", r.IdealWeight, r.WeightDifference)
	fmt.Fprintf(w, "  Water intake:         %.2f L/day\n", r.WaterIntakeLiters)
	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggestions")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}
