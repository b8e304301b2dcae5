package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/namegame/internal/config"
	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
	"github.com/vovakirdan/namegame/internal/storage"
)

var (
	flagOffline bool
	flagClear   bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the profiles the game can use",
	Long: `Fetch the profiles and print the ones with a usable headshot.

A successful fetch refreshes the local cache. With --offline the cache is
read directly and nothing is fetched.

Examples:
  namegame profiles
  namegame profiles --offline
  namegame profiles --profiles-file ./profiles.json
  namegame profiles --clear`,
	Args: cobra.NoArgs,
	Run:  runProfiles,
}

func init() {
	profilesCmd.Flags().BoolVar(&flagOffline, "offline", false, "Read the local cache only")
	profilesCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the local cache and exit")
}

func runProfiles(cmd *cobra.Command, _ []string) {
	if err := listProfiles(cmd.Context()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listProfiles(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, appConfig.Profiles.Timeout+5*time.Second)
	defer cancel()

	if flagOffline || flagClear {
		return listCache(ctx)
	}

	source, closeSource := openSource(appConfig, logger)
	defer closeSource()

	profiles, err := source.Profiles(ctx)
	if err != nil {
		return err
	}
	printProfiles(profiles)
	return nil
}

func listCache(ctx context.Context) error {
	store, err := storage.Open(appConfig.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearProfiles(ctx); err != nil {
			return err
		}
		fmt.Printf("Cleared profile cache at %s\n", config.ExpandHome(appConfig.Storage.Path))
		return nil
	}

	profiles, fetchedAt, err := store.LoadProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("The profile cache is empty.")
		fmt.Println("Run 'namegame profiles' while online to fill it.")
		return nil
	}

	fmt.Printf("Cached %s\n\n", fetchedAt.Local().Format(time.DateTime))
	printProfiles(profiles)
	return nil
}

func printProfiles(profiles []profile.Profile) {
	if len(profiles) == 0 {
		fmt.Println("No profiles available.")
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Job Title", "ID").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, p := range profiles {
		t.Row(strconv.Itoa(i+1), p.FullName(), p.JobTitle, p.ID)
	}

	fmt.Println(t)
	fmt.Println()
	fmt.Printf("%d profiles with a headshot.\n", len(profiles))
	if len(profiles) < game.CandidateCount {
		fmt.Printf("At least %d are needed to play.\n", game.CandidateCount)
	}
}
