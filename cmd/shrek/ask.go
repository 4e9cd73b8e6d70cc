package shrek

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vallehtelia/StupidHack25/internal/gate"
	"github.com/Vallehtelia/StupidHack25/pkg/persona"
	"github.com/Vallehtelia/StupidHack25/pkg/verdict"
)

const (
	usageError          = "No user input provided. Usage: swampgate ask 'your message here' [conversation_history_json]"
	invalidHistoryError = "Invalid conversation history format"
)

// errReported is returned to cobra once the failure document is on stdout.
var errReported = errors.New("failure already reported")

// AskCmd runs one structured request and prints the verdict document.
var AskCmd = &cobra.Command{
	Use:   "ask <message> [conversation_history_json]",
	Short: "Ask Shrek to let you into the swamp",
	Long: `Send one message to the Shrek persona and print its verdict as JSON.

The optional second argument is the conversation so far, as a JSON array of
{"role": "user|assistant|system", "content": "..."} objects.

The result always goes to stdout as a JSON document; the exit code is 0 only
when the request succeeded.

Examples:
  swampgate ask "Can I come in?"
  swampgate ask "I brought onions" '[{"role":"user","content":"hi"},{"role":"assistant","content":"Go away!"}]'
  swampgate ask --provider gemini "Please?"
  swampgate ask -- "-_- let me in"          # messages starting with "-" go after --`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := gate.NewEnv(viper.GetViper())
		if err != nil {
			os.Exit(gate.WriteFatal(cmd.OutOrStdout(), err.Error()))
		}

		code := runAsk(cmd.Context(), env, args, cmd.OutOrStdout())
		_ = env.Close()
		os.Exit(code)
	},
}

func init() {
	AskCmd.SetFlagErrorFunc(askFlagError)
}

// askFlagError keeps unparseable arguments, such as a message starting with
// "-", inside the JSON contract: stdout gets the usage document, stderr the hint.
func askFlagError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%v (put the message after -- if it starts with '-')\n", err)
	gate.WriteFatal(cmd.OutOrStdout(), usageError)
	return errReported
}

// runAsk validates the request locally before any model is built, so none of
// the fatal paths touch the network.
func runAsk(ctx context.Context, env *gate.Env, args []string, stdout io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}
	log := env.Logger

	apiKey, err := env.Config.APIKey()
	if err != nil {
		log.Errorf("Configuration error: %v", err)
		return gate.WriteFatal(stdout, err.Error())
	}

	if len(args) < 1 {
		return gate.WriteFatal(stdout, usageError)
	}
	message := args[0]

	var history []verdict.Turn
	if len(args) > 1 {
		history, err = verdict.ParseHistory(args[1])
		if err != nil {
			log.Warnf("Rejected conversation history: %v", err)
			return gate.WriteFatal(stdout, invalidHistoryError)
		}
	}

	instructions, err := persona.Load(env.Config.InstructionsPath)
	if err != nil {
		log.Errorf("Failed to load persona: %v", err)
		return gate.WriteFatal(stdout, err.Error())
	}

	shaper, err := env.NewShaper(ctx, env.Config, apiKey, log)
	if err != nil {
		log.Errorf("Failed to initialize LLM: %v", err)
		return gate.WriteFatal(stdout, err.Error())
	}

	v, err := shaper.Shape(ctx, message, history, string(instructions))
	if err != nil {
		// Only ErrMissingInstructions comes back here; upstream failures are
		// already part of v.
		return gate.WriteFatal(stdout, err.Error())
	}

	return gate.WriteVerdict(stdout, v)
}
