package embedding

import "github.com/samber/mo"

// Vector はテキストの埋め込みベクトル
// 次元数はアクティブなプロバイダごとに固定される
type Vector []float32

// Result は Vector | Absent を表す
// 長さ0のベクトルとは区別して「ベクトルなし」を扱う
type Result = mo.Option[Vector]

// Absent はベクトルなしの Result を返す
func Absent() Result {
	return mo.None[Vector]()
}

// Present はベクトルを Result に包む
// 空のベクトルは Absent として扱う
func Present(v Vector) Result {
	if len(v) == 0 {
		return Absent()
	}
	return mo.Some(v)
}

// Clone はベクトルのコピーを返す
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Dimension はベクトルの次元数を返す
func (v Vector) Dimension() int {
	return len(v)
}

// absentResults は n 件すべて Absent のスライスを返す
func absentResults(n int) []Result {
	results := make([]Result, n)
	for i := range results {
		results[i] = Absent()
	}
	return results
}
