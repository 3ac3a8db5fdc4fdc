// Package detect handles the format detection command
package detect

import (
	"fmt"
	"io"

	"inmova/bank-import/cmd/common"
	"inmova/bank-import/cmd/root"
	"inmova/bank-import/internal/pipeline"

	"github.com/spf13/cobra"
)

// Cmd represents the detect command
var Cmd = &cobra.Command{
	Use:   "detect",
	Short: "Identify the format of a statement file",
	Long:  `Decode the input and report whether it is Norma 43 or CAMT.053, without parsing it.`,
	RunE:  detectFunc,
}

func detectFunc(cmd *cobra.Command, args []string) error {
	raw, err := common.ReadInput(root.SharedFlags.Input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	return Run(cmd.OutOrStdout(), c.GetPipeline(), raw)
}

// Run prints the detected format and encoding of raw.
func Run(out io.Writer, p *pipeline.Pipeline, raw []byte) error {
	format, encoding, err := p.Detect(raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\t%s\n", string(format), encoding)
	return err
}
