package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ufdr/internal/entities"
	"ufdr/internal/phone"
)

type entitiesView struct {
	entities.FullSet
	NormalizedPhones []phone.Info `json:"normalized_phones"`
}

func newEntitiesCommand() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:         "entities [text...]",
		Short:       "Extract phones, emails, URLs, and crypto addresses from text",
		Long:        "Extract entities from the given text, or from standard input when no text is given.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			set := entities.ExtractAll(text)
			view := entitiesView{FullSet: set, NormalizedPhones: make([]phone.Info, 0, len(set.Phones))}
			for _, raw := range set.Phones {
				view.NormalizedPhones = append(view.NormalizedPhones, phone.Describe(raw, region))
			}
			return writeJSON(cmd, view)
		},
	}

	cmd.Flags().StringVar(&region, "region", phone.DefaultRegion, "Region assumed for numbers without a country prefix")
	return cmd
}
