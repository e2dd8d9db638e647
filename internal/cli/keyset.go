package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tellor-io/telliot-kadena/internal/keystore"
)

func newKeysetCmd() *cobra.Command {
	keysetCmd := &cobra.Command{
		Use:   "keyset",
		Short: "Manage keysets in the keystore",
	}

	keysetCmd.AddCommand(newKeysetAddCmd())
	keysetCmd.AddCommand(newKeysetFindCmd())
	keysetCmd.AddCommand(newKeysetKeyCmd())
	keysetCmd.AddCommand(newKeysetDeleteCmd())
	return keysetCmd
}

func newKeysetAddCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add NAME KEYS PRED CHAINS...",
		Short: "Add a keyset to the keystore",
		Long: `Add a keyset for use on one or more Chainweb chains.

NAME uniquely identifies the keyset in the keystore. KEYS is one or more
private keys in hexadecimal format, space separated (quote the list).
PRED is the keyset predicate, e.g. keys-all. CHAINS is the list of chain
ids the keyset may be used on.`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			keys := strings.Fields(args[1])
			pred := args[2]
			if len(keys) == 0 {
				return fmt.Errorf("at least one private key is required")
			}

			chains := make([]int, 0, len(args[3:]))
			for _, arg := range args[3:] {
				chain, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid chain id %q: %w", arg, err)
				}
				chains = append(chains, chain)
			}

			store, err := keystore.NewStore()
			if err != nil {
				return err
			}
			if store.Exists(name) {
				fmt.Printf("Keyset %s already exists.\n", name)
				return nil
			}

			if password == "" {
				password, err = promptNewPassword(fmt.Sprintf("Enter encryption password for %s", name))
				if err != nil {
					return err
				}
			}

			keyset, err := store.Add(name, pred, chains, keys, password)
			if err != nil {
				return err
			}
			fmt.Printf("Added new keyset %s (address=%v) for use on chains %v\n",
				name, keyset.Addresses(), keyset.Chains())
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Encryption password (prompted when omitted)")
	return cmd
}

func newKeysetFindCmd() *cobra.Command {
	var (
		name    string
		address string
		chainID int
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search the keystore for keysets",
		Long: `Search the keystore for keysets.

Each option is used as a filter. With no options, all keysets are returned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keystore.NewStore()
			if err != nil {
				return err
			}

			filter := keystore.FindFilter{Name: name, ChainID: chainID}
			if address != "" {
				filter.Address = strings.Fields(address)
			}

			keysets, err := store.Find(filter)
			if err != nil {
				return err
			}

			fmt.Printf("Found %d keysets.\n", len(keysets))
			for _, keyset := range keysets {
				fmt.Printf("Keyset name: %s, address: %v, chain IDs: %v\n",
					keyset.Name, keyset.Addresses(), keyset.Chains())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filter by keyset name")
	cmd.Flags().StringVar(&address, "address", "", "Filter by public keys (space separated)")
	cmd.Flags().IntVar(&chainID, "chain-id", -1, "Filter by chain id")
	return cmd
}

func newKeysetKeyCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "key NAME",
		Short: "Show the private keys of a keyset",
		Long: `Show the private keys of a keyset.

NAME is the keyset name used when it was added. The password is prompted
for unless provided through the command line option.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := keystore.NewStore()
			if err != nil {
				return err
			}
			keyset, err := store.Get(name)
			if err != nil {
				if errors.Is(err, keystore.ErrNotFound) {
					fmt.Printf("Keyset %s does not exist.\n", name)
					return nil
				}
				return err
			}

			if password == "" {
				password, err = promptPassword(fmt.Sprintf("Enter password for %s keyfile", name))
				if err != nil {
					return err
				}
			}
			if err := keyset.Unlock(password); err != nil {
				if errors.Is(err, keystore.ErrWrongPassword) {
					fmt.Println("Invalid password")
					return nil
				}
				return err
			}
			defer keyset.Lock()

			keys, err := keyset.Keys()
			if err != nil {
				return err
			}
			fmt.Printf("Private keys: %v\n", keys)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Keyfile password (prompted when omitted)")
	return cmd
}

func newKeysetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a keyset from the keystore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := keystore.NewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(name); err != nil {
				if errors.Is(err, keystore.ErrNotFound) {
					fmt.Printf("Keyset %s does not exist.\n", name)
					return nil
				}
				return err
			}
			fmt.Printf("Deleted keyset %s.\n", name)
			return nil
		},
	}
}
