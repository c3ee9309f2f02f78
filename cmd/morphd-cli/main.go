package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/morphcodes/morphd/internal/config"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/internal/infrastructure/db"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "morphd-cli",
		Usage:   "admin client for the morphd daemon",
		Version: version,
		Commands: []*cli.Command{
			createOrgCmd,
			createChainCmd,
			listChainsCmd,
			getChainCmd,
			currentCmd,
			scanCmd,
			deactivateCmd,
			scansCmd,
			statsCmd,
			exportCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var createOrgCmd = &cli.Command{
	Name:  "create-org",
	Usage: "bootstrap an organization directly in the datadir (run while morphd is stopped)",
	Flags: []cli.Flag{
		datadirFlag, nameFlag, slugFlag, ownerFlag, planFlag, webhookUrlFlag, config.DbType,
	},
	Action: createOrg,
}

func createOrg(c *cli.Context) error {
	plan := domain.Plan(c.String(planFlagName))
	switch plan {
	case domain.PlanFree, domain.PlanStarter, domain.PlanProfessional, domain.PlanEnterprise:
	default:
		return fmt.Errorf("unknown plan %q", plan)
	}

	dbDir := filepath.Join(c.String(datadirFlagName), "db")
	dbType := c.String(config.DbType.Name)
	dataStoreConfig := []interface{}{dbDir}
	if dbType == "badger" {
		dataStoreConfig = []interface{}{dbDir, log.New()}
	}

	repoManager, err := db.NewService(db.ServiceConfig{
		DataStoreType:   dbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return fmt.Errorf("failed to open datadir: %s", err)
	}
	defer repoManager.Close()

	org, err := domain.NewOrganization(
		c.String(nameFlagName), c.String(slugFlagName), c.String(ownerFlagName),
	)
	if err != nil {
		return err
	}
	org.Plan = plan
	if url := c.String(webhookUrlFlagName); url != "" {
		secret, err := domain.NewAPIKey()
		if err != nil {
			return err
		}
		org.WebhookURL = url
		org.WebhookSecret = secret
	}

	if err := repoManager.Organizations().AddOrganization(context.Background(), *org); err != nil {
		return err
	}

	return printJSON(map[string]string{
		"id":            org.ID,
		"slug":          org.Slug,
		"plan":          string(org.Plan),
		"apiKey":        org.APIKey,
		"webhookSecret": org.WebhookSecret,
	})
}

var createChainCmd = &cli.Command{
	Name:   "create-chain",
	Usage:  "create a new chain of single-use codes",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, nameFlag, descriptionFlag, lengthFlag},
	Action: createChain,
}

func createChain(c *cli.Context) error {
	var resp map[string]interface{}
	if err := postJSON(
		c.String(urlFlagName)+"/v1/chains", c.String(apiKeyFlagName),
		map[string]interface{}{
			"name":        c.String(nameFlagName),
			"description": c.String(descriptionFlagName),
			"length":      c.Int(lengthFlagName),
		},
		&resp,
	); err != nil {
		return err
	}
	return printJSON(resp)
}

var listChainsCmd = &cli.Command{
	Name:   "chains",
	Usage:  "list the organization's chains",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag},
	Action: listChains,
}

func listChains(c *cli.Context) error {
	var resp map[string]interface{}
	if err := getJSON(
		c.String(urlFlagName)+"/v1/chains", c.String(apiKeyFlagName), &resp,
	); err != nil {
		return err
	}
	return printJSON(resp)
}

var getChainCmd = &cli.Command{
	Name:   "chain",
	Usage:  "show one chain",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag},
	Action: getChain,
}

func getChain(c *cli.Context) error {
	var resp map[string]interface{}
	if err := getJSON(
		chainURL(c, ""), c.String(apiKeyFlagName), &resp,
	); err != nil {
		return err
	}
	return printJSON(resp)
}

var currentCmd = &cli.Command{
	Name:   "current",
	Usage:  "show the chain's current code and payload",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag},
	Action: current,
}

func current(c *cli.Context) error {
	var resp map[string]interface{}
	if err := getJSON(
		chainURL(c, "/current"), c.String(apiKeyFlagName), &resp,
	); err != nil {
		return err
	}
	return printJSON(resp)
}

var scanCmd = &cli.Command{
	Name:   "scan",
	Usage:  "submit a code against a chain and show the precise outcome",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag, valueFlag},
	Action: scan,
}

func scan(c *cli.Context) error {
	var resp map[string]interface{}
	if err := postJSON(
		chainURL(c, "/scan"), c.String(apiKeyFlagName),
		map[string]string{"value": c.String(valueFlagName)},
		&resp,
	); err != nil {
		return err
	}
	return printJSON(resp)
}

var deactivateCmd = &cli.Command{
	Name:   "deactivate",
	Usage:  "permanently deactivate a chain",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag},
	Action: deactivate,
}

func deactivate(c *cli.Context) error {
	if err := postJSON(
		chainURL(c, "/deactivate"), c.String(apiKeyFlagName), nil, nil,
	); err != nil {
		return err
	}
	fmt.Println("chain deactivated")
	return nil
}

var scansCmd = &cli.Command{
	Name:   "scans",
	Usage:  "show a chain's scan history",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag, limitFlag},
	Action: scans,
}

func scans(c *cli.Context) error {
	var resp map[string]interface{}
	url := fmt.Sprintf("%s?limit=%d", chainURL(c, "/scans"), c.Int(limitFlagName))
	if err := getJSON(url, c.String(apiKeyFlagName), &resp); err != nil {
		return err
	}
	return printJSON(resp)
}

var statsCmd = &cli.Command{
	Name:   "stats",
	Usage:  "show a chain's progress and scan counters",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag},
	Action: stats,
}

func stats(c *cli.Context) error {
	var resp map[string]interface{}
	if err := getJSON(
		chainURL(c, "/stats"), c.String(apiKeyFlagName), &resp,
	); err != nil {
		return err
	}
	return printJSON(resp)
}

var exportCmd = &cli.Command{
	Name:   "export",
	Usage:  "export a chain's scan history as CSV",
	Flags:  []cli.Flag{urlFlag, apiKeyFlag, chainIdFlag, outputFlag},
	Action: export,
}

func export(c *cli.Context) error {
	out := os.Stdout
	if path := c.String(outputFlagName); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		// nolint
		defer f.Close()
		out = f
	}
	return download(chainURL(c, "/export"), c.String(apiKeyFlagName), out)
}

func chainURL(c *cli.Context, suffix string) string {
	return fmt.Sprintf(
		"%s/v1/chains/%s%s", c.String(urlFlagName), c.String(chainIdFlagName), suffix,
	)
}
