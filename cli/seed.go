package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/seed"
)

var (
	seedFixtures  string
	seedSynthetic int
	seedYear      int
	seedRand      int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into the database",
	Long: `Create a demo organization with its users, master data, strategic plan,
SWOT/TOWS analysis, risks and opportunities. Optionally add generated risks.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFixtures, "fixtures", "", "YAML fixtures file (default: built-in demo data)")
	seedCmd.Flags().IntVar(&seedSynthetic, "synthetic", 0, "Number of generated risks to add")
	seedCmd.Flags().IntVar(&seedYear, "year", 0, "Year of the seeded rows (default: plan start year)")
	seedCmd.Flags().Int64Var(&seedRand, "rand-seed", 1, "Random seed for generated risks")
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read fixtures", goerr.V("path", path))
	}
	return seed.Parse(data)
}

func runSeed(cmd *cobra.Command, args []string) error {
	fx, err := loadFixtures(seedFixtures)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.EnsureIndexes(ctx); err != nil {
		e.log.Warn("failed to ensure indexes", zap.Error(err))
	}

	res, err := seed.New(e.store, e.log).Run(ctx, fx, seed.Options{
		Year:      seedYear,
		Synthetic: seedSynthetic,
		RandSeed:  seedRand,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "organization %s (%s)\n", fx.Organization.Name, res.OrganizationID.Hex())
	keys := make([]string, 0, len(res.Counts))
	for k := range res.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-18s %d\n", k, res.Counts[k])
	}
	emails := make([]string, 0, len(res.Passwords))
	for email := range res.Passwords {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	for _, email := range emails {
		fmt.Fprintf(out, "  generated password for %s: %s\n", email, res.Passwords[email])
	}
	fmt.Fprintf(out, "login as %s\n", fx.Users[0].Email)
	return nil
}
