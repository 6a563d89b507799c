package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meghalaya-hospital/registry-admin/internal/domain/patient"
)

func patientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage patient records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the network's patients, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")

			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			records, err := e.client.List(cmd.Context(), e.store.Current().NetworkID)
			if err != nil {
				return err
			}
			dir := patient.NewDirectory(records)
			printPatientTable(cmd.OutOrStdout(), dir.Filter(query))
			return nil
		},
	}
	listCmd.Flags().String("query", "", "Case-insensitive substring filter over name, gender, phone, UPID, MRN")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id|upid>",
		Short: "Show one patient record in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			rec, err := e.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(rec)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a patient from a draft file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			network, _ := cmd.Flags().GetString("network")

			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			draft, err := readDraft(file)
			if err != nil {
				return err
			}
			// Server-assigned identifiers never come from the draft.
			draft.ID = ""
			draft.UPID = ""
			if network != "" {
				draft.NetworkID = network
			}
			if draft.NetworkID == "" {
				draft.NetworkID = e.store.Current().NetworkID
			}

			if errs := patient.Validate(draft, time.Now()); errs != nil {
				printFieldErrors(cmd.ErrOrStderr(), errs)
				return errs
			}
			created, err := e.client.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created patient %s (UPID %s)\n", created.DisplayName(), created.UPID)
			return nil
		},
	}
	createCmd.Flags().StringP("file", "f", "", "Draft file (YAML or JSON)")
	createCmd.Flags().String("network", "", "Network ID (defaults to the session's network)")
	_ = createCmd.MarkFlagRequired("file")
	cmd.AddCommand(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id|upid>",
		Short: "Apply a partial update from a changes file or field flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			current, err := e.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var merged patient.Patient
			var partial map[string]interface{}
			if file != "" {
				partial, err = readPartial(file)
				if err != nil {
					return err
				}
				// Validate the record as it would look after the patch; Merge
				// also strips server-owned keys out of the partial payload.
				merged, err = patient.Merge(*current, partial)
				if err != nil {
					return err
				}
			} else {
				var touched bool
				merged, partial, touched = applySections(*current, sectionPatchesFromFlags(cmd))
				if !touched {
					return errors.New("nothing to update: pass --file or at least one field flag")
				}
			}
			if errs := patient.Validate(&merged, time.Now()); errs != nil {
				printFieldErrors(cmd.ErrOrStderr(), errs)
				return errs
			}
			updated, err := e.client.Update(cmd.Context(), current.ID, partial)
			if err != nil {
				return err
			}
			// The edit flow reconciles against the backend rather than
			// trusting the local copy.
			records, err := e.client.List(cmd.Context(), e.store.Current().NetworkID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %s (UPID %s); collection now has %d records\n",
				updated.DisplayName(), updated.UPID, len(records))
			return nil
		},
	}
	updateCmd.Flags().StringP("file", "f", "", "Changes file (YAML or JSON, only the fields to change)")
	updateCmd.Flags().String("email", "", "Contact email")
	updateCmd.Flags().String("phone", "", "Contact phone")
	updateCmd.Flags().String("mobile", "", "Contact mobile phone (10 digits)")
	updateCmd.Flags().String("line1", "", "Address line 1")
	updateCmd.Flags().String("line2", "", "Address line 2")
	updateCmd.Flags().String("city", "", "Address city")
	updateCmd.Flags().String("state", "", "Address state")
	updateCmd.Flags().String("postal-code", "", "Address postal code")
	updateCmd.Flags().String("country", "", "Address country")
	updateCmd.Flags().String("aadhaar", "", "Aadhaar number (12 digits)")
	updateCmd.Flags().String("pan", "", "PAN (AAAAA9999A)")
	updateCmd.Flags().String("contact-method", "", "Preferred contact method")
	updateCmd.Flags().Bool("reminders", false, "Appointment reminders on/off")
	updateCmd.Flags().Bool("living-will", false, "Living will on file")
	updateCmd.Flags().String("power-of-attorney", "", "Power of attorney holder")
	cmd.AddCommand(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id|upid>",
		Short: "Delete a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			records, err := e.client.List(cmd.Context(), e.store.Current().NetworkID)
			if err != nil {
				return err
			}
			dir := patient.NewDirectory(records)

			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete patient %s?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := e.client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			removed := dir.Remove(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s); %d remaining in network %s\n",
				removed, dir.Len(), e.store.Current().NetworkID)
			return nil
		},
	}
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	cmd.AddCommand(deleteCmd)

	cmd.AddCommand(statusCmd("activate", "Reactivate a deactivated patient"))
	cmd.AddCommand(statusCmd("deactivate", "Deactivate a patient without deleting the record"))

	return cmd
}

// statusCmd builds the activate/deactivate twins, which differ only in the
// sub-resource they PATCH.
func statusCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id|upid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := requireSession(e); err != nil {
				return err
			}
			if action == "activate" {
				err = e.client.Activate(cmd.Context(), args[0])
			} else {
				err = e.client.Deactivate(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Patient %s %sd\n", args[0], action)
			return nil
		},
	}
}

// sectionPatches collects the per-section patches a flag-driven update can
// carry. A zero-value section is skipped entirely.
type sectionPatches struct {
	Contact     patient.ContactPatch
	Address     patient.AddressPatch
	Identifiers patient.IdentifiersPatch
	Preferences patient.PreferencesPatch
	Directives  patient.AdvanceDirectivesPatch
}

// applySections applies the set patches onto a copy of current and builds
// the PATCH payload, one full sub-object per touched section so untouched
// sections never ride along. touched is false when every section is empty.
func applySections(current patient.Patient, sp sectionPatches) (merged patient.Patient, partial map[string]interface{}, touched bool) {
	merged = current
	partial = map[string]interface{}{}
	if sp.Contact != (patient.ContactPatch{}) {
		merged.ApplyContact(sp.Contact)
		partial["contact"] = merged.Contact
	}
	if sp.Address != (patient.AddressPatch{}) {
		merged.ApplyAddress(sp.Address)
		partial["address"] = merged.Address
	}
	if sp.Identifiers != (patient.IdentifiersPatch{}) {
		merged.ApplyIdentifiers(sp.Identifiers)
		partial["identifier"] = merged.Identifiers
	}
	if sp.Preferences != (patient.PreferencesPatch{}) {
		merged.ApplyPreferences(sp.Preferences)
		partial["preferences"] = merged.Preferences
	}
	if sp.Directives != (patient.AdvanceDirectivesPatch{}) {
		merged.ApplyAdvanceDirectives(sp.Directives)
		partial["advanceDirectives"] = merged.AdvanceDirectives
	}
	return merged, partial, len(partial) > 0
}

// sectionPatchesFromFlags turns the explicitly-set update flags into typed
// patches. Unset flags stay nil so clearing a field with "" is possible.
func sectionPatchesFromFlags(cmd *cobra.Command) sectionPatches {
	return sectionPatches{
		Contact: patient.ContactPatch{
			Email:       stringFlag(cmd, "email"),
			Phone:       stringFlag(cmd, "phone"),
			MobilePhone: stringFlag(cmd, "mobile"),
		},
		Address: patient.AddressPatch{
			Line1:      stringFlag(cmd, "line1"),
			Line2:      stringFlag(cmd, "line2"),
			City:       stringFlag(cmd, "city"),
			State:      stringFlag(cmd, "state"),
			PostalCode: stringFlag(cmd, "postal-code"),
			Country:    stringFlag(cmd, "country"),
		},
		Identifiers: patient.IdentifiersPatch{
			Aadhaar: stringFlag(cmd, "aadhaar"),
			PAN:     stringFlag(cmd, "pan"),
		},
		Preferences: patient.PreferencesPatch{
			ContactMethod:        stringFlag(cmd, "contact-method"),
			AppointmentReminders: boolFlag(cmd, "reminders"),
		},
		Directives: patient.AdvanceDirectivesPatch{
			LivingWill:      boolFlag(cmd, "living-will"),
			PowerOfAttorney: stringFlag(cmd, "power-of-attorney"),
		},
	}
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func readDraft(path string) (*patient.Patient, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	var p patient.Patient
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", path, err)
	}
	return &p, nil
}

func readPartial(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read changes: %w", err)
	}
	partial := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &partial); err != nil {
		return nil, fmt.Errorf("decode changes %s: %w", path, err)
	}
	if len(partial) == 0 {
		return nil, fmt.Errorf("changes file %s is empty", path)
	}
	return partial, nil
}

func printPatientTable(w io.Writer, records []patient.Patient) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No patients found.")
		return
	}
	fmt.Fprintf(w, "%-12s %-10s %-28s %-8s %-12s %s\n", "UPID", "MRN", "NAME", "GENDER", "MOBILE", "ACTIVE")
	for _, p := range records {
		fmt.Fprintf(w, "%-12s %-10s %-28s %-8s %-12s %v\n",
			p.UPID, p.MRN, truncate(p.DisplayName(), 28), p.GenderIdentity, p.Contact.MobilePhone, p.Active)
	}
	fmt.Fprintf(w, "%d patient(s)\n", len(records))
}

func printFieldErrors(w io.Writer, errs patient.FieldErrors) {
	fmt.Fprintln(w, "Draft is invalid; nothing was submitted:")
	for _, f := range errs.Fields() {
		fmt.Fprintf(w, "  %-24s %s\n", f, errs[f])
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

// truncate shortens s to n display runes; byte slicing would split
// multibyte names.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
