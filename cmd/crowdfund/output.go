// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/insolar/crowdfund/internal/models"
)

// render writes v as indented JSON or hands a tab writer to text.
func (a *app) render(out io.Writer, v interface{}, text func(w io.Writer)) error {
	if a.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func campaignTable(campaigns []models.Campaign) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tTARGET\tCOLLECTED\tDEADLINE\tSTATUS")
		for _, c := range campaigns {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", c.DisplayID, c.Title, c.Target, c.AmountCollected, c.Deadline, c.Status)
		}
	}
}

func campaignDetail(c models.Campaign) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "ID:\t%d\n", c.DisplayID)
		fmt.Fprintf(w, "Title:\t%s\n", c.Title)
		fmt.Fprintf(w, "Description:\t%s\n", c.Description)
		fmt.Fprintf(w, "Owner:\t%s\n", c.Owner)
		fmt.Fprintf(w, "Target:\t%s\n", c.Target)
		fmt.Fprintf(w, "Collected:\t%s\n", c.AmountCollected)
		fmt.Fprintf(w, "Deadline:\t%s\n", c.Deadline)
		fmt.Fprintf(w, "Status:\t%s\n", c.Status)
		fmt.Fprintf(w, "Location:\t%s, %s\n", c.Region, c.State)
		fmt.Fprintf(w, "Image:\t%s\n", c.Image)
	}
}

func receiptDetail(r models.Receipt) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "Transaction:\t%s\n", r.TxHash)
		fmt.Fprintf(w, "Block:\t%d\n", r.BlockNumber)
		fmt.Fprintf(w, "Gas used:\t%d\n", r.GasUsed)
	}
}
