package openai

import (
	"strconv"
	"strings"

	"github.com/compliancehq/kyc-verifier/internal/analysis"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

func systemPrompt(task analysis.TaskKind) string {
	base := "You are a KYC (Know Your Customer) document analysis specialist with deep knowledge of " +
		"financial compliance, document verification, AML regulations, PEP screening, and customer onboarding. "

	switch task {
	case analysis.TaskKYCExtraction:
		return base + strings.Join([]string{
			"Extract the mandatory KYC data points from the provided documents and return them as a single JSON object.",
			"Use snake_case keys. Cover these groups:",
			"personal information (full_name, date_of_birth, address, phone, email, nationality);",
			"identification (id_number, id_type, issue_date, expiry_date, issuing_authority);",
			"account details (account_type, initial_deposit, source_of_funds, purpose_of_account);",
			"risk factors (risk_classification, pep_status as Yes/No, sanctions_screening, country_risk);",
			"compliance (declaration_signed, terms_accepted, data_consent as Yes/No).",
			"If a value is not present in the documents, omit the key. Return ONLY the JSON object.",
		}, " ")
	default:
		return base + strings.Join([]string{
			"Analyze each document's text thoroughly and produce a comprehensive KYC analysis report:",
			"extracted personal information, identification details, account information,",
			"risk indicators and compliance red flags, declaration completeness,",
			"and a recommendation for onboarding approval or additional review.",
		}, " ")
	}
}

func userPrompt(docs []prepare.DocumentContent, task analysis.TaskKind) string {
	var b strings.Builder
	if task == analysis.TaskKYCExtraction {
		b.WriteString("Extract structured KYC data from the following documents.\n")
	} else {
		b.WriteString("Analyze the following customer onboarding documents.\n")
	}
	for i, d := range docs {
		b.WriteString("\n--- Document ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(d.FileName)
		b.WriteString(" (")
		b.WriteString(d.FileType)
		b.WriteString(") ---\n")
		b.WriteString(d.TextContent)
		b.WriteByte('\n')
	}
	return b.String()
}
