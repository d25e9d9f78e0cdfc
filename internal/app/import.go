package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

// Decimal fields are strings so the file's exact text is what gets parsed.
type ledgerFile struct {
	Users          []importUser  `yaml:"users"`
	Funds          []importFund  `yaml:"funds"`
	Accounts       []importAcct  `yaml:"accounts"`
	Navs           []importNav   `yaml:"navs"`
	CashMovements  []importCash  `yaml:"cash_movements"`
	ShareMovements []importShare `yaml:"share_movements"`
}

type importUser struct {
	AuthSubject string `yaml:"auth_subject"`
	Email       string `yaml:"email"`
	FullName    string `yaml:"full_name"`
	IsAdmin     bool   `yaml:"is_admin"`
	Status      string `yaml:"status"`
}

type importFund struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

type importAcct struct {
	User           string `yaml:"user"` // auth subject
	AccountNumber  string `yaml:"account_number"`
	CommissionRate string `yaml:"commission_rate"`
}

type importNav struct {
	Fund             string `yaml:"fund"` // fund name
	AsOfDate         string `yaml:"as_of_date"`
	FundAccumulated  string `yaml:"fund_accumulated"`
	SharesAmount     string `yaml:"shares_amount"`
	ShareValue       string `yaml:"share_value"`
	DeltaPrevious    string `yaml:"delta_previous"`
	DeltaSinceOrigin string `yaml:"delta_since_origin"`
}

type importCash struct {
	Account       string `yaml:"account"` // account number
	Type          string `yaml:"type"`
	Amount        string `yaml:"amount"`
	Currency      string `yaml:"currency"`
	EffectiveDate string `yaml:"effective_date"`
	Fund          string `yaml:"fund"` // subscribe a deposit into this fund
}

type importShare struct {
	Account       string `yaml:"account"`
	Fund          string `yaml:"fund"`
	Type          string `yaml:"type"`
	SharesChange  string `yaml:"shares_change"`
	SharePrice    string `yaml:"share_price"`
	TotalAmount   string `yaml:"total_amount"`
	EffectiveDate string `yaml:"effective_date"`
}

// ImportResult counts what an import created and skipped.
type ImportResult struct {
	Users          int  `json:"users"`
	Funds          int  `json:"funds"`
	Accounts       int  `json:"accounts"`
	Navs           int  `json:"navs"`
	CashMovements  int  `json:"cash_movements"`
	ShareMovements int  `json:"share_movements"`
	Skipped        int  `json:"skipped"`
	AlreadyApplied bool `json:"already_applied"`
}

// importKVPrefix marks applied files in system KV, keyed by content hash.
const importKVPrefix = "ledger_import:"

// lastImportKey records when the most recent import finished.
const lastImportKey = "last_import"

// ImportLedgerFile seeds users, funds, accounts, NAVs and movements from a
// YAML file. Users, funds and accounts that already exist are reused.
// Movements and NAVs are facts, so a file whose content was already
// imported is not applied twice.
func (a *App) ImportLedgerFile(ctx context.Context, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file %s: %w", path, err)
	}

	var file ledgerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse import file %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	kv := a.Storage.InternalStore()

	if _, err := kv.GetSystemKV(ctx, importKVPrefix+hash); err == nil {
		a.Logger.Info().Str("path", path).Str("sha256", hash[:12]).Msg("Import file already applied, skipping")
		return &ImportResult{AlreadyApplied: true}, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check import history: %w", err)
	}

	im := &importer{app: a, ctx: ctx, result: &ImportResult{},
		users: map[string]string{}, funds: map[string]int64{}, accounts: map[string]int64{}}

	steps := []func(*ledgerFile) error{
		im.importUsers,
		im.importFunds,
		im.importAccounts,
		im.importNavs,
		im.importCash,
		im.importShares,
	}
	for _, step := range steps {
		if err := step(&file); err != nil {
			return im.result, err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := kv.SetSystemKV(ctx, importKVPrefix+hash, now); err != nil {
		return im.result, fmt.Errorf("failed to record import: %w", err)
	}
	if err := kv.SetSystemKV(ctx, lastImportKey, now+" "+path); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to record last import time")
	}

	a.Logger.Info().
		Str("path", path).
		Int("users", im.result.Users).
		Int("funds", im.result.Funds).
		Int("accounts", im.result.Accounts).
		Int("navs", im.result.Navs).
		Int("cash", im.result.CashMovements).
		Int("shares", im.result.ShareMovements).
		Int("skipped", im.result.Skipped).
		Msg("Ledger import complete")

	return im.result, nil
}

type importer struct {
	app    *App
	ctx    context.Context
	result *ImportResult

	users    map[string]string // auth subject -> user id
	funds    map[string]int64  // fund name -> id
	accounts map[string]int64  // account number -> id
}

func (im *importer) importUsers(f *ledgerFile) error {
	svc := im.app.UserService
	for i, u := range f.Users {
		existing, err := svc.GetUserByAuthSubject(im.ctx, u.AuthSubject)
		if err == nil {
			im.users[u.AuthSubject] = existing.UserID
			im.result.Skipped++
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("users[%d]: %w", i, err)
		}

		created, err := svc.CreateUser(im.ctx, &models.UserCreate{
			AuthSubject: u.AuthSubject,
			Email:       u.Email,
			FullName:    u.FullName,
			IsAdmin:     u.IsAdmin,
			Status:      models.UserStatus(u.Status),
		})
		if err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		im.users[u.AuthSubject] = created.UserID
		im.result.Users++
	}
	return nil
}

func (im *importer) importFunds(f *ledgerFile) error {
	svc := im.app.MovementService
	existing, err := svc.ListFunds(im.ctx)
	if err != nil {
		return err
	}
	for _, fund := range existing {
		im.funds[fund.Name] = fund.ID
	}

	for i, fund := range f.Funds {
		if _, ok := im.funds[fund.Name]; ok {
			im.result.Skipped++
			continue
		}
		created, err := svc.CreateFund(im.ctx, &models.FundCreate{Name: fund.Name, Currency: fund.Currency})
		if err != nil {
			return fmt.Errorf("funds[%d]: %w", i, err)
		}
		im.funds[created.Name] = created.ID
		im.result.Funds++
	}
	return nil
}

func (im *importer) importAccounts(f *ledgerFile) error {
	ledger := im.app.Storage.LedgerStore()
	for i, acct := range f.Accounts {
		if existing, err := ledger.GetAccountByNumber(im.ctx, acct.AccountNumber); err == nil {
			im.accounts[acct.AccountNumber] = existing.ID
			im.result.Skipped++
			continue
		}

		userID, err := im.userID(acct.User)
		if err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
		rate, err := optionalDecimal("commission_rate", acct.CommissionRate)
		if err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
		created, err := im.app.UserService.CreateAccount(im.ctx, &models.AccountCreate{
			UserID:         userID,
			AccountNumber:  acct.AccountNumber,
			CommissionRate: rate,
		})
		if err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
		im.accounts[created.AccountNumber] = created.ID
		im.result.Accounts++
	}
	return nil
}

func (im *importer) importNavs(f *ledgerFile) error {
	for i, n := range f.Navs {
		in, err := im.navCreate(n)
		if err != nil {
			return fmt.Errorf("navs[%d]: %w", i, err)
		}
		if _, err := im.app.MovementService.CreateNav(im.ctx, in); err != nil {
			return fmt.Errorf("navs[%d]: %w", i, err)
		}
		im.result.Navs++
	}
	return nil
}

func (im *importer) navCreate(n importNav) (*models.FundNavCreate, error) {
	fundID, err := im.fundID(n.Fund)
	if err != nil {
		return nil, err
	}
	on, err := parseDate("as_of_date", n.AsOfDate)
	if err != nil {
		return nil, err
	}
	in := &models.FundNavCreate{FundID: fundID, AsOfDate: on}
	if in.FundAccumulated, err = requiredDecimal("fund_accumulated", n.FundAccumulated); err != nil {
		return nil, err
	}
	if in.SharesAmount, err = requiredDecimal("shares_amount", n.SharesAmount); err != nil {
		return nil, err
	}
	if in.ShareValue, err = requiredDecimal("share_value", n.ShareValue); err != nil {
		return nil, err
	}
	if in.DeltaPrevious, err = optionalDecimal("delta_previous", n.DeltaPrevious); err != nil {
		return nil, err
	}
	if in.DeltaSinceOrigin, err = optionalDecimal("delta_since_origin", n.DeltaSinceOrigin); err != nil {
		return nil, err
	}
	return in, nil
}

func (im *importer) importCash(f *ledgerFile) error {
	for i, c := range f.CashMovements {
		accountID, err := im.accountID(c.Account)
		if err != nil {
			return fmt.Errorf("cash_movements[%d]: %w", i, err)
		}
		amount, err := requiredDecimal("amount", c.Amount)
		if err != nil {
			return fmt.Errorf("cash_movements[%d]: %w", i, err)
		}
		on, err := parseDate("effective_date", c.EffectiveDate)
		if err != nil {
			return fmt.Errorf("cash_movements[%d]: %w", i, err)
		}
		in := &models.CashMovementCreate{
			AccountID:     accountID,
			Type:          models.CashMovementType(c.Type),
			Amount:        amount,
			Currency:      c.Currency,
			EffectiveDate: on,
		}
		if c.Fund != "" {
			fundID, err := im.fundID(c.Fund)
			if err != nil {
				return fmt.Errorf("cash_movements[%d]: %w", i, err)
			}
			in.FundID = &fundID
		}
		if _, err := im.app.MovementService.CreateCashMovement(im.ctx, in); err != nil {
			return fmt.Errorf("cash_movements[%d]: %w", i, err)
		}
		im.result.CashMovements++
		if in.FundID != nil {
			im.result.ShareMovements++
		}
	}
	return nil
}

func (im *importer) importShares(f *ledgerFile) error {
	for i, s := range f.ShareMovements {
		in, err := im.shareCreate(s)
		if err != nil {
			return fmt.Errorf("share_movements[%d]: %w", i, err)
		}
		if _, err := im.app.MovementService.CreateShareMovement(im.ctx, in); err != nil {
			return fmt.Errorf("share_movements[%d]: %w", i, err)
		}
		im.result.ShareMovements++
	}
	return nil
}

func (im *importer) shareCreate(s importShare) (*models.FundShareMovementCreate, error) {
	accountID, err := im.accountID(s.Account)
	if err != nil {
		return nil, err
	}
	fundID, err := im.fundID(s.Fund)
	if err != nil {
		return nil, err
	}
	on, err := parseDate("effective_date", s.EffectiveDate)
	if err != nil {
		return nil, err
	}
	in := &models.FundShareMovementCreate{
		AccountID:     accountID,
		FundID:        fundID,
		Type:          models.ShareMovementType(s.Type),
		EffectiveDate: on,
	}
	if in.SharesChange, err = requiredDecimal("shares_change", s.SharesChange); err != nil {
		return nil, err
	}
	if in.SharePrice, err = requiredDecimal("share_price", s.SharePrice); err != nil {
		return nil, err
	}
	if s.TotalAmount == "" {
		in.TotalAmount = models.NewDecimal(in.SharesChange.Mul(in.SharePrice.Decimal))
	} else if in.TotalAmount, err = requiredDecimal("total_amount", s.TotalAmount); err != nil {
		return nil, err
	}
	return in, nil
}

func (im *importer) userID(subject string) (string, error) {
	if id, ok := im.users[subject]; ok {
		return id, nil
	}
	u, err := im.app.UserService.GetUserByAuthSubject(im.ctx, subject)
	if err != nil {
		return "", err
	}
	im.users[subject] = u.UserID
	return u.UserID, nil
}

func (im *importer) fundID(name string) (int64, error) {
	if id, ok := im.funds[name]; ok {
		return id, nil
	}
	return 0, common.NotFoundf("fund %q", name)
}

func (im *importer) accountID(number string) (int64, error) {
	if id, ok := im.accounts[number]; ok {
		return id, nil
	}
	a, err := im.app.Storage.LedgerStore().GetAccountByNumber(im.ctx, number)
	if err != nil {
		return 0, err
	}
	im.accounts[number] = a.ID
	return a.ID, nil
}

func requiredDecimal(field, s string) (models.Decimal, error) {
	v, err := models.ParseDecimal(strings.TrimSpace(s))
	if err != nil {
		return models.Decimal{}, common.Invalidf("%s: malformed decimal %q", field, s)
	}
	return v, nil
}

func optionalDecimal(field, s string) (models.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return models.NullDecimal{}, nil
	}
	v, err := requiredDecimal(field, s)
	if err != nil {
		return models.NullDecimal{}, err
	}
	return models.NewNullDecimal(v.Decimal), nil
}

func parseDate(field, s string) (models.Date, error) {
	if s == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, common.Invalidf("%s: %v", field, err)
	}
	return d, nil
}
