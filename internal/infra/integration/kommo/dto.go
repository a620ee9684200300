package kommo

// DealInput describes a converted lead pushed to the CRM pipeline.
type DealInput struct {
	Name     string
	Email    string
	Phone    string
	PlanName string
	// Price in major currency units, as Kommo stores it.
	Price int64
	Tags  []string
}

type Config struct {
	Token    string
	BaseURL  string
	StatusID int
}

type contactList struct {
	Embedded struct {
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
	} `json:"_embedded"`
}

type leadList struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}

type customField struct {
	FieldCode string       `json:"field_code"`
	Values    []fieldValue `json:"values"`
}

type fieldValue struct {
	Value    string `json:"value"`
	EnumCode string `json:"enum_code"`
}

type tag struct {
	Name string `json:"name"`
}

type contactRef struct {
	ID int `json:"id"`
}
