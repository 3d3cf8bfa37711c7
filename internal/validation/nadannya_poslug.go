package validation

// NadannyaPoslug is the rule set of the services agreement ("договір надання послуг").
// The contract date is collected but kept as free text.
func NadannyaPoslug() *RuleSet {
	return &RuleSet{
		Rules: map[string]Rule{
			"city":                                  City,
			"enterprise":                            MinLength(2),
			"full_name_customer":                    FullName,
			"full_name_performer":                   FullName,
			"customer_phone_number":                 Phone,
			"performer_phone_number":                Phone,
			"customer_edrpou":                       OrganizationCode,
			"performer_edrpou":                      OrganizationCode,
			"customer_iban":                         IBAN,
			"performer_iban":                        IBAN,
			"customer_postal_address_and_zip_code":  Address,
			"performer_postal_address_and_zip_code": Address,
			"date_act_signed":                       Integer,
			"money_transfer_deadline":               Integer,
			"contract_validity_period":              MinLength(1),
		},
		Aliases: map[string]string{
			"customer_unified_state_register_of_organizations":  "customer_edrpou",
			"performer_unified_state_register_of_organizations": "performer_edrpou",
		},
	}
}
