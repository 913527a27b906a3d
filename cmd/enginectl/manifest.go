package main

// YAML manifest loading for the enginectl CLI. Transaction manifests are
// authored as a YAML instruction list and decoded here before being handed
// to the executor; this is the CLI's only serialization concern; the
// engine-internal wire format stays the tagged codec (core.Value).

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"resonance-engine/core"
)

// yamlInstruction is the on-disk shape of one manifest step. Only the
// fields relevant to Kind need be set; unset string fields decode to "".
type yamlInstruction struct {
	Kind      string `yaml:"kind"`
	Resource  string `yaml:"resource,omitempty"`
	Amount    string `yaml:"amount,omitempty"`
	IDs       []string `yaml:"ids,omitempty"`
	BucketRef string `yaml:"bucket_ref,omitempty"`
	ProofRef  string `yaml:"proof_ref,omitempty"`
	Package   string `yaml:"package,omitempty"`
	Blueprint string `yaml:"blueprint,omitempty"`
	Component string `yaml:"component,omitempty"`
	Method    string `yaml:"method,omitempty"`
	CodePath  string `yaml:"code_path,omitempty"`
}

// yamlManifest is the on-disk shape of a whole transaction.
type yamlManifest struct {
	EpochMin     uint64            `yaml:"epoch_min"`
	EpochMax     uint64            `yaml:"epoch_max"`
	Nonce        uint64            `yaml:"nonce"`
	Instructions []yamlInstruction `yaml:"instructions"`
}

var instrKindByName = map[string]core.InstrKind{
	"take_from_worktop":                  core.InstrTakeFromWorktop,
	"take_from_worktop_by_amount":        core.InstrTakeFromWorktopByAmount,
	"take_from_worktop_by_ids":           core.InstrTakeFromWorktopByIds,
	"return_to_worktop":                  core.InstrReturnToWorktop,
	"assert_worktop_contains":            core.InstrAssertWorktopContains,
	"assert_worktop_contains_by_amount":  core.InstrAssertWorktopContainsByAmount,
	"assert_worktop_contains_by_ids":     core.InstrAssertWorktopContainsByIds,
	"create_proof_from_auth_zone":        core.InstrCreateProofFromAuthZone,
	"create_proof_from_auth_zone_by_amount": core.InstrCreateProofFromAuthZoneByAmount,
	"create_proof_from_auth_zone_by_ids": core.InstrCreateProofFromAuthZoneByIds,
	"push_to_auth_zone":                  core.InstrPushToAuthZone,
	"pop_from_auth_zone":                 core.InstrPopFromAuthZone,
	"clear_auth_zone":                    core.InstrClearAuthZone,
	"clone_proof":                        core.InstrCloneProof,
	"drop_proof":                         core.InstrDropProof,
	"call_function":                      core.InstrCallFunction,
	"call_method":                        core.InstrCallMethod,
	"call_method_with_all_resources":     core.InstrCallMethodWithAllResources,
	"publish_package":                    core.InstrPublishPackage,
}

// loadManifest reads a YAML manifest file and decodes it into the engine's
// instruction list plus the transaction envelope fields the executor needs.
func loadManifest(path string) ([]core.Instruction, uint64, uint64, uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var doc yamlManifest
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	out := make([]core.Instruction, 0, len(doc.Instructions))
	for i, yi := range doc.Instructions {
		kind, ok := instrKindByName[yi.Kind]
		if !ok {
			return nil, 0, 0, 0, fmt.Errorf("manifest instruction %d: unknown kind %q", i, yi.Kind)
		}
		instr := core.Instruction{Kind: kind, BucketRef: yi.BucketRef, ProofRef: yi.ProofRef, Blueprint: yi.Blueprint, Method: yi.Method}

		if yi.Resource != "" {
			addr, err := core.AddressFromHex(yi.Resource)
			if err != nil {
				return nil, 0, 0, 0, fmt.Errorf("manifest instruction %d: %w", i, err)
			}
			instr.Resource = addr
		}
		if yi.Package != "" {
			addr, err := core.AddressFromHex(yi.Package)
			if err != nil {
				return nil, 0, 0, 0, fmt.Errorf("manifest instruction %d: %w", i, err)
			}
			instr.Package = addr
		}
		if yi.Component != "" {
			addr, err := core.AddressFromHex(yi.Component)
			if err != nil {
				return nil, 0, 0, 0, fmt.Errorf("manifest instruction %d: %w", i, err)
			}
			instr.Component = addr
		}
		if yi.Amount != "" {
			amt, err := core.ParseAmount(yi.Amount)
			if err != nil {
				return nil, 0, 0, 0, fmt.Errorf("manifest instruction %d: %w", i, err)
			}
			instr.Amount = amt
		}
		if len(yi.IDs) > 0 {
			ids := make([]core.NonFungibleID, len(yi.IDs))
			for j, id := range yi.IDs {
				ids[j] = core.NonFungibleID(id)
			}
			instr.IDs = core.NewIDSet(ids...)
		}
		if yi.CodePath != "" {
			code, err := os.ReadFile(yi.CodePath)
			if err != nil {
				return nil, 0, 0, 0, fmt.Errorf("manifest instruction %d: read code %s: %w", i, yi.CodePath, err)
			}
			instr.Code = code
		}
		out = append(out, instr)
	}
	return out, doc.EpochMin, doc.EpochMax, doc.Nonce, nil
}
