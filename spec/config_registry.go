package spec

import (
	"bytes"
	"encoding/json"

	"github.com/zintix-labs/distlab/errs"
	"gopkg.in/yaml.v3"
)

// GetDistSettingByYAML
// 會讀取 YAML 設定、初始化並執行基本檢查後回傳。
// 解碼採嚴格模式：多寫/拼錯欄位就報錯。
func GetDistSettingByYAML(data []byte) (*DistSetting, error) {
	ds := &DistSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(ds); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	// 設定檔初始化
	if err := ds.init(); err != nil {
		return nil, errs.Wrap(err, "dist setting initialized err")
	}

	return ds, nil
}

// GetDistSettingByJSON
// 會讀取 Json 設定、初始化並執行基本檢查後回傳
func GetDistSettingByJSON(data []byte) (*DistSetting, error) {
	ds := &DistSetting{}
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := ds.init(); err != nil {
		return nil, errs.Wrap(err, "dist setting initialized err")
	}

	return ds, nil
}
