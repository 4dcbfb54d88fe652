package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/spf13/cobra"
)

var mediaCmd = &cobra.Command{
	Use:   "media [section]",
	Short: "List the gallery media discovered for a section",
	Long: `List the images and videos found in the media directory, with the
caption each one gets on the site. Without a section every section is listed.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(media.SectionAbout), string(media.SectionProducts)},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sections := media.Sections
		if len(args) == 1 {
			section, err := media.ParseSection(args[0])
			if err != nil {
				return err
			}
			sections = []media.Section{section}
		}

		lib := newLibrary(cfg)
		listing := make(map[media.Section][]media.Item, len(sections))
		for _, section := range sections {
			items, err := lib.Discover(cmd.Context(), section)
			if err != nil {
				return err
			}
			listing[section] = items
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(listing)
		}

		tbl := logging.NewTable("SECTION", "TYPE", "SIZE", "SRC", "ALT")
		for _, section := range sections {
			for _, item := range listing[section] {
				size := "-"
				if item.Width > 0 {
					size = fmt.Sprintf("%dx%d", item.Width, item.Height)
				}
				tbl.Row(string(section), string(item.Type), size, item.Src, item.Alt)
			}
		}
		if tbl.Len() == 0 {
			logging.Info("no media found", "dir", cfg.MediaDir)
			return nil
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
		return err
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.Flags().Bool("json", false, "Print the listing as JSON")
}
