// Package classify handles the transaction classification command
package classify

import (
	"fmt"
	"io"
	"text/tabwriter"

	"inmova/bank-import/cmd/common"
	"inmova/bank-import/cmd/root"
	"inmova/bank-import/internal/categorizer"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"

	"github.com/spf13/cobra"
)

// RuleSaver persists a rule set.
type RuleSaver interface {
	SaveRules(rules []models.ClassificationRule) error
}

// WriteDefaultRules makes the command write the built-in rules to the
// rules file instead of classifying.
var WriteDefaultRules bool

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Show how each transaction of a statement is classified",
	Long: `Parse a statement and print every transaction with its category and the
rule that matched it. With --write-default-rules, write the built-in rules
to the configured rules file as a starting point for customization.`,
	RunE: classifyFunc,
}

func init() {
	Cmd.Flags().BoolVar(&WriteDefaultRules, "write-default-rules", false, "Write the built-in rules to the rules file and exit")
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	if WriteDefaultRules {
		if err := WriteDefaults(c.GetStore()); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rules to %s\n", len(categorizer.DefaultRules()), c.GetStore().RulesFile)
		return err
	}

	raw, err := common.ReadInput(root.SharedFlags.Input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return Run(cmd.OutOrStdout(), c.GetPipeline(), c.GetClassifier(), raw)
}

// WriteDefaults saves the built-in rules through saver.
func WriteDefaults(saver RuleSaver) error {
	return saver.SaveRules(categorizer.DefaultRules())
}

// Run prints one line per transaction of raw with its category and the
// name of the rule that produced it.
func Run(out io.Writer, p *pipeline.Pipeline, classifier *categorizer.Classifier, raw []byte) error {
	result, err := p.Ingest(raw, pipeline.IngestOptions{})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tRULE\tDESCRIPTION")
	for _, sr := range result.Statements {
		for _, tx := range sr.Statement.Transactions {
			rule := "-"
			if r, ok := classifier.Rules().Match(tx); ok {
				rule = r.Name
				if rule == "" {
					rule = r.Pattern
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				tx.Date.Format("2006-01-02"), tx.SignedAmount().StringFixed(2), tx.Category, rule, tx.Description)
		}
	}
	return tw.Flush()
}
