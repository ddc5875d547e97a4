package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"listingscraper/pkg/sheet"
)

// urlsCmd groups helpers for the input workbook
var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Create or inspect the URL workbook",
}

var urlsCreateCmd = &cobra.Command{
	Use:   "create <file.xlsx> <url>...",
	Short: "Write listing URLs into the first column of a new workbook",
	Example: `  listingscraper urls create urls.xlsx https://dealer.example/cars/1 https://dealer.example/cars/2`,
	Args: cobra.MinimumNArgs(2),
	RunE: runURLsCreate,
}

var urlsListCmd = &cobra.Command{
	Use:   "list [file.xlsx]",
	Short: "Print the URLs a scrape would visit",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runURLsList,
}

func init() {
	rootCmd.AddCommand(urlsCmd)
	urlsCmd.AddCommand(urlsCreateCmd)
	urlsCmd.AddCommand(urlsListCmd)

	urlsListCmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet to read (default: first sheet)")
	urlsListCmd.Flags().BoolVar(&skipHeader, "skip-header", false, "ignore the first row of the sheet")
}

func runURLsCreate(cmd *cobra.Command, args []string) error {
	path, urls := args[0], args[1:]
	if err := sheet.Write(path, urls); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d URL(s) to %s\n", len(urls), path)
	return nil
}

func runURLsList(cmd *cobra.Command, args []string) error {
	path := sheet.DefaultPath
	if len(args) > 0 {
		path = args[0]
	}

	urls, err := sheet.ReadURLs(path, sheet.Options{Sheet: sheetName, SkipHeader: skipHeader})
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	return nil
}
