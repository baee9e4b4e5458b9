// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

// Command trove inspects store files written by the trove library.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/trovekit/trove"
)

func main() {
	root := &cobra.Command{
		Use:           "trove",
		Short:         "inspect trove store files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(bucketsCmd(), keysCmd(), dumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "trove:", err)
		os.Exit(1)
	}
}

func bucketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buckets <file>",
		Short: "list the buckets in a store file with their entry counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			db, err := bolt.Open(args[0], 0o600, &bolt.Options{ReadOnly: true})
			if err != nil {
				return err
			}
			defer db.Close()

			return db.View(func(tx *bolt.Tx) error {
				return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
					fmt.Printf("%s\t%d\n", name, b.Stats().KeyN)
					return nil
				})
			})
		},
	}
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <file> <bucket>",
		Short: "list the keys in a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := trove.OpenStore(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			keys, err := store.Keys(args[1])
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func dumpCmd() *cobra.Command {
	var asList bool

	cmd := &cobra.Command{
		Use:   "dump <file> <bucket> <key>",
		Short: "decode and print a serialized container",
		Long: `Decode the msgpack stream stored under the key and print it
entry by entry. Containers are stored as a count followed by the
entries, maps as key/value pairs, lists as single elements.`,
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			db, err := bolt.Open(args[0], 0o600, &bolt.Options{ReadOnly: true})
			if err != nil {
				return err
			}
			defer db.Close()

			var data []byte
			err = db.View(func(tx *bolt.Tx) error {
				b := tx.Bucket([]byte(args[1]))
				if b == nil {
					return fmt.Errorf("%w: %s", trove.ErrBucketNotFound, args[1])
				}
				v := b.Get([]byte(args[2]))
				if v == nil {
					return fmt.Errorf("%w: %s/%s", trove.ErrKeyNotFound, args[1], args[2])
				}
				data = bytes.Clone(v)
				return nil
			})
			if err != nil {
				return err
			}

			return dumpStream(data, asList)
		},
	}

	cmd.Flags().BoolVar(&asList, "list", false, "decode as a list of elements instead of key/value pairs")
	return cmd
}

// dumpStream prints a serialized container without knowing its Go
// types, each entry is decoded into the generic msgpack representation.
func dumpStream(data []byte, asList bool) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	n, err := dec.DecodeInt()
	if err != nil {
		return fmt.Errorf("decoding entry count: %w", err)
	}
	fmt.Printf("%d entries\n", n)

	for i := 0; i < n; i++ {
		k, err := dec.DecodeInterface()
		if err != nil {
			return fmt.Errorf("decoding entry %d: %w", i, err)
		}
		if asList {
			fmt.Printf("%v\n", k)
			continue
		}
		v, err := dec.DecodeInterface()
		if err != nil {
			return fmt.Errorf("decoding value %d: %w", i, err)
		}
		fmt.Printf("%v\t%v\n", k, v)
	}
	return nil
}
