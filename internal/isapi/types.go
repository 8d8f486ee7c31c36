package isapi

import "github.com/agentstation/cardsync/pkg/constants"

// TimeLayout is the local-time layout panels expect in validity windows.
const TimeLayout = "2006-01-02T15:04:05"

// Card type and user type values sent on record creation.
const (
	CardTypeNormal = "normalCard"
	UserTypeNormal = "normal"
	TimeTypeLocal  = "local"
)

// Employee is one user record as returned by UserInfo/Search.
type Employee struct {
	EmployeeNo string `json:"employeeNo"`
	Name       string `json:"name,omitempty"`
	UserType   string `json:"userType,omitempty"`
	NumOfCard  int    `json:"numOfCard"`
}

// FreeSlots returns the number of cards the employee can still take.
func (e Employee) FreeSlots() int {
	if e.NumOfCard >= constants.MaxCardsPerEmployee {
		return 0
	}
	return constants.MaxCardsPerEmployee - e.NumOfCard
}

// Card is one card record as returned by CardInfo/Search.
type Card struct {
	EmployeeNo string `json:"employeeNo"`
	CardNo     string `json:"cardNo"`
	CardType   string `json:"cardType,omitempty"`
}

// SearchCond is the shared search condition of both search endpoints.
type SearchCond struct {
	SearchID             string `json:"searchID"`
	MaxResults           int    `json:"maxResults"`
	SearchResultPosition int    `json:"searchResultPosition"`
	FuzzySearch          string `json:"fuzzySearch,omitempty"`
}

// UserSearchRequest is the body of UserInfo/Search.
type UserSearchRequest struct {
	UserInfoSearchCond SearchCond `json:"UserInfoSearchCond"`
}

// UserSearchResult is the inner object of a UserInfo/Search answer.
type UserSearchResult struct {
	SearchID           string     `json:"searchID"`
	ResponseStatusStrg string     `json:"responseStatusStrg"`
	NumOfMatches       int        `json:"numOfMatches"`
	TotalMatches       int        `json:"totalMatches"`
	UserInfo           []Employee `json:"UserInfo,omitempty"`
}

// UserSearchResponse is the body answered by UserInfo/Search.
type UserSearchResponse struct {
	UserInfoSearch UserSearchResult `json:"UserInfoSearch"`
}

// CardSearchRequest is the body of CardInfo/Search.
type CardSearchRequest struct {
	CardInfoSearchCond SearchCond `json:"CardInfoSearchCond"`
}

// CardSearchResult is the inner object of a CardInfo/Search answer.
type CardSearchResult struct {
	SearchID           string `json:"searchID"`
	ResponseStatusStrg string `json:"responseStatusStrg"`
	NumOfMatches       int    `json:"numOfMatches"`
	TotalMatches       int    `json:"totalMatches"`
	CardInfo           []Card `json:"CardInfo,omitempty"`
}

// CardSearchResponse is the body answered by CardInfo/Search.
type CardSearchResponse struct {
	CardInfoSearch CardSearchResult `json:"CardInfoSearch"`
}

// RightPlan grants an employee access through one door.
type RightPlan struct {
	DoorNo int `json:"doorNo"`
}

// Validity is the time window an employee record is active.
type Validity struct {
	Enable    bool   `json:"enable"`
	BeginTime string `json:"beginTime"`
	EndTime   string `json:"endTime"`
	TimeType  string `json:"timeType"`
}

// UserRecord is the employee created by UserInfo/Record.
type UserRecord struct {
	EmployeeNo      string      `json:"employeeNo"`
	Name            string      `json:"name"`
	UserType        string      `json:"userType"`
	LocalUIRight    bool        `json:"localUIRight"`
	MaxOpenDoorTime int         `json:"maxOpenDoorTime"`
	RightPlan       []RightPlan `json:"RightPlan"`
	Valid           Validity    `json:"Valid"`
	UserVerifyMode  string      `json:"userVerifyMode"`
}

// UserRecordRequest is the body of UserInfo/Record.
type UserRecordRequest struct {
	UserInfo UserRecord `json:"UserInfo"`
}

// CardRecordRequest is the body of CardInfo/Record.
type CardRecordRequest struct {
	CardInfo Card `json:"CardInfo"`
}

// EmployeeRef names one employee in a delete condition.
type EmployeeRef struct {
	EmployeeNo string `json:"employeeNo"`
}

// UserDeleteRequest is the body of UserInfo/Delete.
type UserDeleteRequest struct {
	UserInfoDelCond struct {
		EmployeeNoList []EmployeeRef `json:"EmployeeNoList"`
	} `json:"UserInfoDelCond"`
}

// CardRef names one card in a delete condition.
type CardRef struct {
	CardNo string `json:"cardNo"`
}

// CardDeleteRequest is the body of CardInfo/Delete.
type CardDeleteRequest struct {
	CardInfoDelCond struct {
		CardNoList []CardRef `json:"CardNoList"`
	} `json:"CardInfoDelCond"`
}

// UserCountResponse is the body answered by UserInfo/Count.
type UserCountResponse struct {
	UserInfoCount struct {
		UserNumber int `json:"userNumber"`
	} `json:"UserInfoCount"`
}

// CardCountResponse is the body answered by CardInfo/Count.
type CardCountResponse struct {
	CardInfoCount struct {
		CardNumber int `json:"cardNumber"`
	} `json:"CardInfoCount"`
}
