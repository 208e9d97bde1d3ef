package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"geohash-service/config"
	"geohash-service/geohash"
)

func newEncodeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var length uint

	cmd := &cobra.Command{
		Use:   "encode LAT LON",
		Short: "Encode a coordinate pair into a geohash",
		Example: `$ geohash encode 25.813646 -80.133761 --length 7
dhx4be0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[0], err)
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[1], err)
			}

			if !cmd.Flags().Changed("length") {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				length = cfg.Geohash.Length
			}

			hash, err := geohash.Codec{Length: length}.Encode(lat, lon)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().UintVarP(&length, "length", "l", geohash.DefaultLength, "number of characters in the hash")
	return cmd
}

func newDecodeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "decode HASH",
		Short: "Decode a geohash into latitude and longitude",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				strict = cfg.Geohash.Strict
			}

			lat, lon, err := geohash.Codec{Strict: strict}.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n",
				strconv.FormatFloat(lat, 'f', -1, 64),
				strconv.FormatFloat(lon, 'f', -1, 64))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject characters outside the geohash alphabet")
	return cmd
}

func newNeighborsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors HASH",
		Short: "Print the eight cells around a geohash",
		Example: `$ geohash neighbors dhx4be0
North	dhx4be2
NorthEast	dhx4be3
...`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			n := geohash.GetNeighbors(args[0])
			for _, name := range []string{
				"North", "NorthEast", "East", "SouthEast",
				"South", "SouthWest", "West", "NorthWest",
			} {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, n[name])
			}
		},
	}
}
