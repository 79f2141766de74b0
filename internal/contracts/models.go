// Package contracts exposes a uniform read-only guarantee view over the five
// contract variants sold through partner EMFs. The claim core never touches a
// raw contract row; it resolves a (variant, id) reference into a
// GuaranteeView and reads from that.
package contracts

import (
	"fmt"

	id "sinistra/pkg/domain"
)

// VariantTag discriminates the five contract shapes. A contract reference is
// always the pair (variant, id), never a bare foreign key.
type VariantTag string

const (
	VariantCreditIndividuel VariantTag = "credit_individuel"
	VariantCreditGroupe     VariantTag = "credit_groupe"
	VariantCreditScolaire   VariantTag = "credit_scolaire"
	VariantCreditAgricole   VariantTag = "credit_agricole"
	VariantCreditStock      VariantTag = "credit_stock"
)

// ParseVariant validates a variant tag coming off the wire.
func ParseVariant(s string) (VariantTag, error) {
	switch VariantTag(s) {
	case VariantCreditIndividuel, VariantCreditGroupe, VariantCreditScolaire,
		VariantCreditAgricole, VariantCreditStock:
		return VariantTag(s), nil
	}
	return "", fmt.Errorf("unknown contract variant %q", s)
}

// Ref is the polymorphic contract reference carried by a claim.
type Ref struct {
	Variant    VariantTag    `json:"variant"`
	ContractID id.ContractID `json:"contract_id"`
}

// PrevoyanceGuarantee is the supplemental death/disability benefit paid to a
// named beneficiary, independent of the loan payoff to the EMF.
type PrevoyanceGuarantee struct {
	Beneficiaire string
	Capital      int64
}

// Guarantees is the slice of a contract the claim core is allowed to see.
type Guarantees struct {
	EMF              string
	CapitalRestantDu int64
	Prevoyance       *PrevoyanceGuarantee
}

// GuaranteeView is the single adapter interface over all variants.
type GuaranteeView interface {
	HasPrevoyance() bool
	OutstandingPrincipal() int64
	PrevoyanceBeneficiary() string
	PrevoyanceCapital() int64
	EMFName() string
}

// Contract is the tagged union: each variant carries its own shape but yields
// the same Guarantees.
type Contract interface {
	Ref() Ref
	Guarantees() Guarantees
}

// CreditIndividuel covers a single borrower's loan.
type CreditIndividuel struct {
	ID               id.ContractID
	NumeroContrat    string
	Emprunteur       string
	CapitalRestantDu int64
	Prevoyance       *PrevoyanceGuarantee
	EMF              string
}

func (c CreditIndividuel) Ref() Ref { return Ref{VariantCreditIndividuel, c.ID} }
func (c CreditIndividuel) Guarantees() Guarantees {
	return Guarantees{EMF: c.EMF, CapitalRestantDu: c.CapitalRestantDu, Prevoyance: c.Prevoyance}
}

// CreditGroupe covers a solidarity-group loan; the guarantee still pays a
// single outstanding balance.
type CreditGroupe struct {
	ID               id.ContractID
	NumeroContrat    string
	NomGroupe        string
	NombreMembres    int
	CapitalRestantDu int64
	Prevoyance       *PrevoyanceGuarantee
	EMF              string
}

func (c CreditGroupe) Ref() Ref { return Ref{VariantCreditGroupe, c.ID} }
func (c CreditGroupe) Guarantees() Guarantees {
	return Guarantees{EMF: c.EMF, CapitalRestantDu: c.CapitalRestantDu, Prevoyance: c.Prevoyance}
}

// CreditScolaire covers school-fee loans.
type CreditScolaire struct {
	ID               id.ContractID
	NumeroContrat    string
	Emprunteur       string
	Etablissement    string
	CapitalRestantDu int64
	Prevoyance       *PrevoyanceGuarantee
	EMF              string
}

func (c CreditScolaire) Ref() Ref { return Ref{VariantCreditScolaire, c.ID} }
func (c CreditScolaire) Guarantees() Guarantees {
	return Guarantees{EMF: c.EMF, CapitalRestantDu: c.CapitalRestantDu, Prevoyance: c.Prevoyance}
}

// CreditAgricole covers seasonal agricultural loans.
type CreditAgricole struct {
	ID               id.ContractID
	NumeroContrat    string
	Emprunteur       string
	Campagne         string
	CapitalRestantDu int64
	Prevoyance       *PrevoyanceGuarantee
	EMF              string
}

func (c CreditAgricole) Ref() Ref { return Ref{VariantCreditAgricole, c.ID} }
func (c CreditAgricole) Guarantees() Guarantees {
	return Guarantees{EMF: c.EMF, CapitalRestantDu: c.CapitalRestantDu, Prevoyance: c.Prevoyance}
}

// CreditStock covers inventory-financing loans.
type CreditStock struct {
	ID               id.ContractID
	NumeroContrat    string
	Emprunteur       string
	Entrepot         string
	CapitalRestantDu int64
	Prevoyance       *PrevoyanceGuarantee
	EMF              string
}

func (c CreditStock) Ref() Ref { return Ref{VariantCreditStock, c.ID} }
func (c CreditStock) Guarantees() Guarantees {
	return Guarantees{EMF: c.EMF, CapitalRestantDu: c.CapitalRestantDu, Prevoyance: c.Prevoyance}
}

// View adapts Guarantees to the GuaranteeView interface.
func View(g Guarantees) GuaranteeView { return guaranteeView{g: g} }

type guaranteeView struct {
	g Guarantees
}

func (v guaranteeView) HasPrevoyance() bool { return v.g.Prevoyance != nil }

func (v guaranteeView) OutstandingPrincipal() int64 { return v.g.CapitalRestantDu }

func (v guaranteeView) PrevoyanceBeneficiary() string {
	if v.g.Prevoyance == nil {
		return ""
	}
	return v.g.Prevoyance.Beneficiaire
}

func (v guaranteeView) PrevoyanceCapital() int64 {
	if v.g.Prevoyance == nil {
		return 0
	}
	return v.g.Prevoyance.Capital
}

func (v guaranteeView) EMFName() string { return v.g.EMF }
