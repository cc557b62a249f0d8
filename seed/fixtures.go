// Package seed loads demo data into a store.
package seed

import (
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Rating struct {
	Probability int `yaml:"probability"`
	Impact      int `yaml:"impact"`
}

type Fixtures struct {
	Organization struct {
		Name    string `yaml:"name"`
		Type    string `yaml:"type"`
		Address string `yaml:"address"`
		Phone   string `yaml:"phone"`
	} `yaml:"organization"`

	Users []struct {
		FullName string `yaml:"fullName"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
		JobTitle string `yaml:"jobTitle"`
	} `yaml:"users"`

	WorkUnits []struct {
		Code     string `yaml:"code"`
		Name     string `yaml:"name"`
		Type     string `yaml:"type"`
		HeadName string `yaml:"headName"`
	} `yaml:"workUnits"`

	RiskCategories []struct {
		Code        string `yaml:"code"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"riskCategories"`

	RencanaStrategis struct {
		Code      string `yaml:"code"`
		Name      string `yaml:"name"`
		StartYear int    `yaml:"startYear"`
		EndYear   int    `yaml:"endYear"`
		Vision    string `yaml:"vision"`
		Mission   string `yaml:"mission"`
		Status    string `yaml:"status"`
	} `yaml:"rencanaStrategis"`

	Swot []struct {
		Unit        string `yaml:"unit"`
		Category    string `yaml:"category"`
		Perspective string `yaml:"perspective"`
		Description string `yaml:"description"`
		Weight      int    `yaml:"weight"`
		Rank        int    `yaml:"rank"`
	} `yaml:"swot"`

	Tows []struct {
		Type      string `yaml:"type"`
		Statement string `yaml:"statement"`
		Priority  int    `yaml:"priority"`
	} `yaml:"tows"`

	// Sasaran link to the first TOWS strategy of the named type.
	Sasaran []struct {
		Tows        string `yaml:"tows"`
		Perspective string `yaml:"perspective"`
		Statement   string `yaml:"statement"`
		Weight      int    `yaml:"weight"`
	} `yaml:"sasaran"`

	// Risks reference units and categories by code and sasaran by 1-based position.
	Risks []struct {
		Unit              string  `yaml:"unit"`
		Category          string  `yaml:"category"`
		Sasaran           int     `yaml:"sasaran"`
		Title             string  `yaml:"title"`
		Cause             string  `yaml:"cause"`
		ImpactDescription string  `yaml:"impactDescription"`
		Owner             string  `yaml:"owner"`
		Probability       int     `yaml:"probability"`
		Impact            int     `yaml:"impact"`
		Controls          string  `yaml:"controls"`
		Mitigation        string  `yaml:"mitigation"`
		Residual          *Rating `yaml:"residual"`
	} `yaml:"risks"`

	Peluang []struct {
		Unit        string `yaml:"unit"`
		Category    string `yaml:"category"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Probability int    `yaml:"probability"`
		Impact      int    `yaml:"impact"`
		ActionPlan  string `yaml:"actionPlan"`
	} `yaml:"peluang"`
}

// Parse decodes fixtures and rejects documents without an organization or user.
func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, goerr.Wrap(err, "failed to parse fixtures")
	}
	if fx.Organization.Name == "" {
		return nil, goerr.New("fixtures have no organization name")
	}
	if len(fx.Users) == 0 {
		return nil, goerr.New("fixtures have no users")
	}
	return &fx, nil
}

// Default returns the embedded demo fixtures.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}
