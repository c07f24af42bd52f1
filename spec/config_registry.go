// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spec

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/profilescale/errs"
	"gopkg.in/yaml.v3"
)

// GetJobByYAML
// 讀取單一 Job 的 YAML、初始化並執行基本檢查後回傳。
func GetJobByYAML(data []byte) (*Job, error) {
	j := &Job{}
	if err := yaml.Unmarshal(data, j); err != nil {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "failed to unmarshall yaml")
	}
	if err := j.Init(); err != nil {
		return nil, errs.Wrap(err, "job initialized err")
	}
	return j, nil
}

// GetJobByJSON
// 讀取單一 Job 的 JSON、初始化並執行基本檢查後回傳。
func GetJobByJSON(data []byte) (*Job, error) {
	j := &Job{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "can not unmarshall json byte")
	}
	if err := j.Init(); err != nil {
		return nil, errs.Wrap(err, "job initialized err")
	}
	return j, nil
}

// GetJobFileByYAML 讀取多 Job 設定檔（jobs: [...]）
func GetJobFileByYAML(data []byte) (*JobFile, error) {
	f := &JobFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "failed to unmarshall yaml")
	}
	if err := f.Init(); err != nil {
		return nil, errs.Wrap(err, "job file initialized err")
	}
	return f, nil
}

// GetJobFileByJSON 讀取多 Job 設定檔（{"jobs": [...]}）
func GetJobFileByJSON(data []byte) (*JobFile, error) {
	f := &JobFile{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "can not unmarshall json byte")
	}
	if err := f.Init(); err != nil {
		return nil, errs.Wrap(err, "job file initialized err")
	}
	return f, nil
}

// GetJobFileByExt 依副檔名選擇解碼器（.yaml/.yml/.json）
func GetJobFileByExt(filename string, raw []byte) (*JobFile, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return GetJobFileByYAML(raw)
	case ".json":
		return GetJobFileByJSON(raw)
	default:
		return nil, errs.Invalidf("unsupported job file format: %q", filename)
	}
}
