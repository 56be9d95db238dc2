package document

// Company is the issuer shown in the document header and footer.
type Company struct {
	Name    string
	Address string
	ZipCode string
	City    string
	Phone   string
	Email   string
	Website string
}

// DefaultCompany returns the VerandaMeister letterhead.
func DefaultCompany() Company {
	return Company{
		Name:    "VerandaMeister",
		Address: "Kraanstraat",
		ZipCode: "6541 EJ",
		City:    "Nijmegen",
		Phone:   "+49 178 2917922",
		Email:   "kontakt@verandameister.de",
		Website: "www.verandameister.de",
	}
}
