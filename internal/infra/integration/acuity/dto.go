package acuity

import (
	"fmt"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
)

// APIError: erro HTTP do resolvedor, com status e corpo preservados
// para o chamador classificar (transiente vs permanente).
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("acuity api (status %d): %s", e.StatusCode, e.Body)
}

// identityResponse é o shape cru que a API devolve por hash
type identityResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	Address struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Zip     string `json:"zip"`
	} `json:"address"`

	AgeRange          string `json:"ageRange"`
	Gender            string `json:"gender"`
	MaritalStatus     string `json:"maritalStatus"`
	IncomeRange       string `json:"estimatedIncomeRange"`
	HomeOwner         string `json:"homeOwner"`
	HomeValue         string `json:"estimatedHomeValue"`
	LengthOfResidence string `json:"lengthOfResidence"`

	Emails []struct {
		Email            string `json:"email"`
		QualityLevel     int    `json:"qualityLevel"`
		RankOrder        int    `json:"rankOrder"`
		OptIn            bool   `json:"optIn"`
		UpdateDate       string `json:"updateDate"`
		RegistrationDate string `json:"registrationDate"`
	} `json:"emails"`
}

// Identity: resultado já mapeado para o vocabulário do domínio
type Identity struct {
	FirstName string
	LastName  string
	Address   entity.Address

	AgeRange          string
	Gender            string
	MaritalStatus     string
	IncomeRange       string
	HomeOwner         string
	HomeValue         string
	LengthOfResidence string

	Emails []entity.CandidateEmail
}

func (raw identityResponse) toIdentity() *Identity {
	identity := &Identity{
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
		Address: entity.Address{
			Street:  raw.Address.Street,
			City:    raw.Address.City,
			State:   raw.Address.State,
			ZipCode: raw.Address.Zip,
		},
		AgeRange:          raw.AgeRange,
		Gender:            raw.Gender,
		MaritalStatus:     raw.MaritalStatus,
		IncomeRange:       raw.IncomeRange,
		HomeOwner:         raw.HomeOwner,
		HomeValue:         raw.HomeValue,
		LengthOfResidence: raw.LengthOfResidence,
	}

	for _, e := range raw.Emails {
		identity.Emails = append(identity.Emails, entity.CandidateEmail{
			Email:            e.Email,
			QualityLevel:     e.QualityLevel,
			RankOrder:        e.RankOrder,
			OptIn:            e.OptIn,
			UpdateDate:       e.UpdateDate,
			RegistrationDate: e.RegistrationDate,
		})
	}

	return identity
}
