package shrek

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vallehtelia/StupidHack25/internal/gate"
)

const jokePrompt = "Tell me a joke?"

// JokeCmd is the unstructured mode: one line in, the raw model reply out.
var JokeCmd = &cobra.Command{
	Use:   "joke",
	Short: "Interactive single prompt without persona or JSON shaping",
	Long: `Prompt for one line on stdin, send it to the model as-is and print the reply.

No persona, history or verdict extraction is involved.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := gate.NewEnv(viper.GetViper())
		if err != nil {
			os.Exit(gate.WriteFatal(cmd.OutOrStdout(), err.Error()))
		}

		code := runJoke(cmd.Context(), env, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		_ = env.Close()
		os.Exit(code)
	},
}

func runJoke(ctx context.Context, env *gate.Env, stdin io.Reader, stdout, stderr io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	apiKey, err := env.Config.APIKey()
	if err != nil {
		return gate.WriteFatal(stdout, err.Error())
	}

	fmt.Fprint(stdout, jokePrompt)

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(stdout)
		fmt.Fprintf(stderr, "failed to read input: %v\n", err)
		return 1
	}
	prompt := strings.TrimRight(line, "\r\n")

	shaper, err := env.NewShaper(ctx, env.Config, apiKey, env.Logger)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	reply, err := shaper.Ask(ctx, prompt)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, reply)
	return 0
}
