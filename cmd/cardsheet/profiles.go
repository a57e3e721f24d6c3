package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/cardsheet/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage printer offset profiles",
	Long: `Offset profiles store x/y corrections for a printer and paper combination.
Apply one with "cardsheet create --offset-profile NAME".`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all offset profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

var profilesInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show details of one offset profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesInfo,
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update an offset profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesCreate,
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an offset profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesDelete,
}

var profilesSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesSetDefault,
}

var profilesExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all profiles to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesExport,
}

var profilesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import profiles from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesImport,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesInfoCmd, profilesCreateCmd, profilesDeleteCmd,
		profilesSetDefaultCmd, profilesExportCmd, profilesImportCmd)

	profilesCreateCmd.Flags().IntP("x-offset", "x", 0, "x offset in pixels at 300 PPI")
	profilesCreateCmd.Flags().IntP("y-offset", "y", 0, "y offset in pixels at 300 PPI")
	profilesCreateCmd.Flags().String("paper", "", "paper size, e.g. letter or a4")
	profilesCreateCmd.Flags().String("desc", "", "description of the printer setup")
	_ = profilesCreateCmd.MarkFlagRequired("x-offset")
	_ = profilesCreateCmd.MarkFlagRequired("y-offset")

	profilesDeleteCmd.Flags().Bool("yes", false, "delete without asking")

	profilesImportCmd.Flags().Bool("replace", false, "replace all existing profiles instead of merging")
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	snap, err := store.Snapshot()
	if err != nil {
		return err
	}
	profiles, err := store.List()
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Println("No offset profiles found.")
		fmt.Println("\nCreate your first profile with:")
		fmt.Println("  cardsheet profiles create NAME --x-offset X --y-offset Y --paper PAPER_SIZE")
		return nil
	}

	fmt.Println("Available offset profiles:")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Default profile: %s\n\n", orNone(snap.DefaultProfile))
	for _, p := range profiles {
		marker := ""
		if p.Name == snap.DefaultProfile {
			marker = " (default)"
		}
		fmt.Printf("%s%s\n", p.Name, marker)
		printProfile(p, "   ")
		fmt.Println()
	}
	return nil
}

func runProfilesInfo(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	p, err := store.Get(args[0])
	if err != nil {
		return err
	}
	snap, err := store.Snapshot()
	if err != nil {
		return err
	}

	marker := ""
	if p.Name == snap.DefaultProfile {
		marker = " (default)"
	}
	title := fmt.Sprintf("Profile: %s%s", p.Name, marker)
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", len(title)))
	printProfile(p, "")
	fmt.Println("\nUsage:")
	fmt.Printf("  cardsheet create --offset-profile %s [other options...]\n", p.Name)
	return nil
}

func runProfilesCreate(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	_, err = store.Save(args[0],
		mustGetInt(cmd, "x-offset"),
		mustGetInt(cmd, "y-offset"),
		mustGetString(cmd, "paper"),
		mustGetString(cmd, "desc"))
	return err
}

func runProfilesDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if !mustGetBool(cmd, "yes") && !confirm(fmt.Sprintf("Are you sure you want to delete profile %q?", args[0])) {
		log.Info("Nothing deleted")
		return nil
	}
	_, err = store.Delete(args[0])
	return err
}

func runProfilesSetDefault(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return store.SetDefault(args[0])
}

func runProfilesExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	_, err = store.Export(args[0])
	return err
}

func runProfilesImport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	_, err = store.Import(args[0], mustGetBool(cmd, "replace"))
	return err
}

func printProfile(p profile.Profile, indent string) {
	fmt.Printf("%sDescription: %s\n", indent, p.Description)
	fmt.Printf("%sPaper Size:  %s\n", indent, orDefault(p.PaperSize, "Not specified"))
	fmt.Printf("%sOffsets:     x=%+d, y=%+d\n", indent, p.XOffset, p.YOffset)
	fmt.Printf("%sCreated:     %s\n", indent, p.CreatedAt.Format("2006-01-02 15:04:05"))
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func orNone(s string) string {
	return orDefault(s, "None")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
