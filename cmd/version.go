package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/go-github/v66/github"
	"github.com/spf13/cobra"
)

// Version is the running PVFS release.
const Version = "0.1.0"

const (
	currentVersion = "v" + Version
	gitHubOwner    = "ovh"
	gitHubRepo     = "pvfs"
)

// Print some PVFS release information
func printReleaseInfo(name, tag string, time *github.Timestamp, prerelease bool) {
	p := fmt.Printf

	p("* Version name : %s\n", name)
	p("* Tag name : %s\n", tag)
	p("* Is pre-release : %t\n", prerelease)
	if time != nil {
		p("* Published at : %s\n", *time)
	}
}

// Get more information on GitHub API about the current release
func getCurrentReleaseInfo(client *github.Client) (cName, cTag string, cTime *github.Timestamp, cPrerelease bool, err error) {
	c, _, err := client.Repositories.GetReleaseByTag(context.Background(), gitHubOwner, gitHubRepo, currentVersion)
	if err != nil {
		return "?", "?", nil, false, err
	}

	return c.GetName(), c.GetTagName(), c.PublishedAt, c.GetPrerelease(), nil
}

// Get more information on GitHub API about the latest release
func getLastReleaseInfo(client *github.Client) (lName, lTag string, lTime *github.Timestamp, lPrerelease bool) {
	opt := &github.ListOptions{PerPage: 1}
	releases, _, err := client.Repositories.ListReleases(context.Background(), gitHubOwner, gitHubRepo, opt)
	if err != nil || len(releases) == 0 {
		return "?", "?", nil, false
	}

	l := releases[len(releases)-1]

	return l.GetName(), l.GetTagName(), l.PublishedAt, l.GetPrerelease()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long: "Display the current PVFS version and check for a newer\n" +
		"release using the GitHub API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		client := github.NewClient(nil)

		color.White("Current PVFS version:\n\n")

		cName, cTag, cTime, cPrerelease, err := getCurrentReleaseInfo(client)
		printReleaseInfo(cName, cTag, cTime, cPrerelease)
		if err != nil {
			color.Yellow("\nCan't join GitHub API.\n")
			return nil
		}

		lName, lTag, lTime, lPrerelease := getLastReleaseInfo(client)

		if currentVersion == lTag {
			color.Green("\n\nYou have the latest version of pvfs.")
		} else if lTag != "" {
			color.Red("\n\nA new pvfs release exist.\nVisit https://github.com/ovh/pvfs/ for more information.\n\n")
			printReleaseInfo(lName, lTag, lTime, lPrerelease)
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
