package main

import (
	"fmt"

	"github.com/morphcodes/morphd/internal/config"
	"github.com/urfave/cli/v2"
)

const (
	urlFlagName         = "url"
	apiKeyFlagName      = "api-key"
	datadirFlagName     = "datadir"
	nameFlagName        = "name"
	descriptionFlagName = "description"
	lengthFlagName      = "length"
	chainIdFlagName     = "id"
	valueFlagName       = "value"
	limitFlagName       = "limit"
	outputFlagName      = "output"
	slugFlagName        = "slug"
	ownerFlagName       = "owner"
	planFlagName        = "plan"
	webhookUrlFlagName  = "webhook-url"
)

var (
	urlFlag = &cli.StringFlag{
		Name:  urlFlagName,
		Usage: "the url where to reach morphd",
		Value: fmt.Sprintf("http://127.0.0.1:%d", config.DefaultPort),
	}
	apiKeyFlag = &cli.StringFlag{
		Name:     apiKeyFlagName,
		Usage:    "organization api key used for authenticated requests",
		Required: true,
	}
	datadirFlag = &cli.StringFlag{
		Name:     datadirFlagName,
		Usage:    "morphd datadir, used to bootstrap organizations offline",
		Required: true,
	}
	nameFlag = &cli.StringFlag{
		Name:     nameFlagName,
		Usage:    "display name",
		Required: true,
	}
	descriptionFlag = &cli.StringFlag{
		Name:  descriptionFlagName,
		Usage: "free-form description",
	}
	lengthFlag = &cli.IntFlag{
		Name:     lengthFlagName,
		Usage:    "number of codes in the chain (10-10000)",
		Required: true,
	}
	chainIdFlag = &cli.StringFlag{
		Name:     chainIdFlagName,
		Usage:    "id of the chain",
		Required: true,
	}
	valueFlag = &cli.StringFlag{
		Name:     valueFlagName,
		Usage:    "the claimed code value to scan",
		Required: true,
	}
	limitFlag = &cli.IntFlag{
		Name:  limitFlagName,
		Usage: "max number of scan records to fetch",
		Value: 50,
	}
	outputFlag = &cli.StringFlag{
		Name:  outputFlagName,
		Usage: "file to write the CSV export to, stdout if empty",
	}
	slugFlag = &cli.StringFlag{
		Name:     slugFlagName,
		Usage:    "unique organization slug",
		Required: true,
	}
	ownerFlag = &cli.StringFlag{
		Name:  ownerFlagName,
		Usage: "owner identifier recorded on the organization",
	}
	planFlag = &cli.StringFlag{
		Name:  planFlagName,
		Usage: "billing plan (free, starter, professional, enterprise)",
		Value: "free",
	}
	webhookUrlFlag = &cli.StringFlag{
		Name:  webhookUrlFlagName,
		Usage: "url receiving signed notifications for accepted scans",
	}
)
