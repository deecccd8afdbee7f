package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tbxark/formbot/form"
)

func newSlotsCmd() *cobra.Command {
	var withSchema bool
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the required slots and how each one is extracted",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form.NewRestaurantForm()
			out := cmd.OutOrStdout()
			mapping := f.SlotMapping()
			fmt.Fprintf(out, "%s\n", f.Name())
			for _, slot := range f.RequiredSlots() {
				fmt.Fprintf(out, "- %s\n", slot)
				for _, s := range mapping[slot] {
					fmt.Fprintf(out, "    %T %+v\n", s, s)
				}
			}
			if withSchema {
				schema, err := f.JsonSchema()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s\n", schema)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSchema, "schema", false, "also print the booking JSON schema")
	return cmd
}
