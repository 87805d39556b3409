package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GoPolymarket/kylingate/internal/signer"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	secret    string
	timestamp int64
	stampNow  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "kylin-sign [key=value ...]",
		Short:        "Print the canonical string and signature for a Kylin request",
		Example:      "  kylin-sign --secret $KYLIN_API_SECRET coinName=BTC exchCode=okex pageNum=1",
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVar(&secret, "secret", "", "API secret (default $KYLIN_API_SECRET)")
	rootCmd.Flags().Int64Var(&timestamp, "timestamp", 0, "add timestamp=<ms> before signing")
	rootCmd.Flags().BoolVar(&stampNow, "now", false, "add the current epoch-ms timestamp before signing")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	if secret == "" {
		secret = os.Getenv("KYLIN_API_SECRET")
	}

	s, err := signer.NewSigner(secret)
	if err != nil {
		return err
	}

	params, err := parsePairs(args)
	if err != nil {
		return err
	}
	switch {
	case timestamp > 0:
		params[signer.ParamTimestamp] = strconv.FormatInt(timestamp, 10)
	case stampNow:
		params[signer.ParamTimestamp] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	canonical, sig := s.SignParams(params)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "canonical: %s\n", canonical)
	fmt.Fprintf(out, "signature: %s\n", sig)
	return nil
}

func parsePairs(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args)+1)
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, errors.New("expected key=value, got " + strconv.Quote(arg))
		}
		params[k] = v
	}
	return params, nil
}
