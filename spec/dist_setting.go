package spec

import (
	"fmt"

	"github.com/zintix-labs/distlab/errs"
)

// DID 為分布設定檔的全域唯一編號。
type DID uint32

// Family 標示分布族：連續或離散。
type Family string

const (
	FamilyContinuous Family = "continuous"
	FamilyDiscrete   Family = "discrete"
)

// 連續分布 kind 名稱。
const (
	KindUniform     = "uniform"
	KindGaussian    = "gaussian"
	KindLogNormal   = "lognormal"
	KindExponential = "exponential"
	KindPareto      = "pareto"
	KindWeibull     = "weibull"
	KindGamma       = "gamma"
	KindBeta        = "beta"
)

// 離散分布 kind 名稱。
const (
	KindBernoulli = "bernoulli"
	KindBinomial  = "binomial"
	KindGeometric = "geometric"
	KindPoisson   = "poisson"
	// 離散 uniform 與連續共用 KindUniform，由 Family 區分。
)

// DistSetting 包含啟用一個分布機台所需的所有設定。
type DistSetting struct {
	DistName string             `yaml:"dist_name"  json:"dist_name"`
	DistID   DID                `yaml:"dist_id"    json:"dist_id"`
	Family   Family             `yaml:"family"     json:"family"`
	Kind     string             `yaml:"kind"       json:"kind"`
	Params   map[string]float64 `yaml:"params"     json:"params"`
	Outcome  OutcomeSetting     `yaml:"outcome"    json:"outcome"`
}

// OutcomeSetting 描述離散分布的結果範圍（目前只有 uniform 會用到）。
type OutcomeSetting struct {
	Min int64 `yaml:"min" json:"min"`
	Max int64 `yaml:"max" json:"max"`
}

// Param 依名稱取出參數。
func (ds *DistSetting) Param(name string) (float64, bool) {
	v, ok := ds.Params[name]
	return v, ok
}

// init
func (ds *DistSetting) init() error {
	if ds.Params == nil {
		ds.Params = map[string]float64{}
	}
	return ds.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (ds *DistSetting) valid() error {

	if ds.DistName == "" {
		return errs.NewFatal(fmt.Sprintf("dist_id: %d err:empty dist_name", ds.DistID))
	}

	switch ds.Family {
	case FamilyContinuous:
		return ds.validContinuous()
	case FamilyDiscrete:
		return ds.validDiscrete()
	default:
		return errs.NewFatal(fmt.Sprintf("dist_name: %s err:unknown family %q", ds.DistName, ds.Family))
	}
}

// validContinuous 檢查連續分布的參數組合與取值範圍。
// 規則與取樣層的建構子合約一致：設定檔載入失敗回傳錯誤，
// 取樣層則視為程式缺陷直接 panic。
func (ds *DistSetting) validContinuous() error {
	switch ds.Kind {
	case KindUniform:
		lo, hi, err := ds.pair("lower", "upper")
		if err != nil {
			return err
		}
		if lo > hi {
			return ds.badParam("lower > upper")
		}
	case KindGaussian, KindLogNormal:
		if _, _, err := ds.pair("mean", "sd"); err != nil {
			return err
		}
	case KindExponential:
		rate, err := ds.one("rate")
		if err != nil {
			return err
		}
		if rate <= 0 {
			return ds.badParam("rate must be positive")
		}
	case KindPareto, KindWeibull:
		scale, shape, err := ds.pair("scale", "shape")
		if err != nil {
			return err
		}
		if scale <= 0 || shape <= 0 {
			return ds.badParam("scale and shape must be positive")
		}
	case KindGamma:
		rate, shape, err := ds.pair("rate", "shape")
		if err != nil {
			return err
		}
		if rate <= 0 {
			return ds.badParam("rate must be positive")
		}
		if shape < 1 {
			return ds.badParam("shape must be >= 1")
		}
	case KindBeta:
		s1, s2, err := ds.pair("shape1", "shape2")
		if err != nil {
			return err
		}
		if s1 <= 1 || s2 <= 1 {
			return ds.badParam("both shapes must be > 1")
		}
	default:
		return errs.NewFatal(fmt.Sprintf("dist_name: %s err:unknown continuous kind %q", ds.DistName, ds.Kind))
	}
	return nil
}

// validDiscrete 檢查離散分布的參數組合與取值範圍。
func (ds *DistSetting) validDiscrete() error {
	switch ds.Kind {
	case KindBernoulli, KindGeometric:
		p, err := ds.one("prob")
		if err != nil {
			return err
		}
		if p < 0 || p > 1 {
			return ds.badParam("prob must be in [0,1]")
		}
	case KindBinomial:
		trialsF, err := ds.one("trials")
		if err != nil {
			return err
		}
		p, err := ds.one("prob")
		if err != nil {
			return err
		}
		if trialsF < 0 || trialsF != float64(int(trialsF)) {
			return ds.badParam("trials must be a non-negative integer")
		}
		if p < 0 || p > 1 {
			return ds.badParam("prob must be in [0,1]")
		}
	case KindPoisson:
		freq, err := ds.one("freq")
		if err != nil {
			return err
		}
		if freq <= 0 {
			return ds.badParam("freq must be positive")
		}
	case KindUniform:
		if ds.Outcome.Min > ds.Outcome.Max {
			return ds.badParam("outcome.min > outcome.max")
		}
	default:
		return errs.NewFatal(fmt.Sprintf("dist_name: %s err:unknown discrete kind %q", ds.DistName, ds.Kind))
	}
	return nil
}

func (ds *DistSetting) one(name string) (float64, error) {
	v, ok := ds.Params[name]
	if !ok {
		return 0, errs.NewFatal(fmt.Sprintf("dist_name: %s err:missing param %q", ds.DistName, name))
	}
	return v, nil
}

func (ds *DistSetting) pair(a, b string) (float64, float64, error) {
	va, err := ds.one(a)
	if err != nil {
		return 0, 0, err
	}
	vb, err := ds.one(b)
	if err != nil {
		return 0, 0, err
	}
	return va, vb, nil
}

func (ds *DistSetting) badParam(msg string) error {
	return errs.NewFatal(fmt.Sprintf("dist_name: %s kind: %s err:%s", ds.DistName, ds.Kind, msg))
}
