package xblas

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// BatchGemmF32 computes, for each of the batch independent matrix pairs,
// C_i = alpha*op(A_i)*op(B_i) + beta*C_i, where op(X) is X or X^T depending
// on transA/transB. A_i, B_i, C_i are row-major blocks laid out contiguously
// one after another along the batch axis; lda/ldb/ldc are the row strides of
// the stored (pre-transpose) matrices. Setting k=1 turns this into a batched
// rank-1 outer product, which is how the signature core uses it for 4.C/4.D.
func BatchGemmF32(batch int, transA, transB bool, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) {
	ta, tb := blas.NoTrans, blas.NoTrans

	rowsA, colsA := m, k
	if transA {
		ta = blas.Trans
		rowsA, colsA = k, m
	}

	rowsB, colsB := k, n
	if transB {
		tb = blas.Trans
		rowsB, colsB = n, k
	}

	aStep, bStep, cStep := rowsA*lda, rowsB*ldb, m*ldc

	for i := range batch {
		A := blas32.General{Rows: rowsA, Cols: colsA, Data: a[i*aStep : i*aStep+rowsA*lda], Stride: lda}
		B := blas32.General{Rows: rowsB, Cols: colsB, Data: b[i*bStep : i*bStep+rowsB*ldb], Stride: ldb}
		C := blas32.General{Rows: m, Cols: n, Data: c[i*cStep : i*cStep+m*ldc], Stride: ldc}
		blas32.Gemm(ta, tb, alpha, A, B, beta, C)
	}
}

// BatchGemmF64 is the float64 analogue of BatchGemmF32.
func BatchGemmF64(batch int, transA, transB bool, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	ta, tb := blas.NoTrans, blas.NoTrans

	rowsA, colsA := m, k
	if transA {
		ta = blas.Trans
		rowsA, colsA = k, m
	}

	rowsB, colsB := k, n
	if transB {
		tb = blas.Trans
		rowsB, colsB = n, k
	}

	aStep, bStep, cStep := rowsA*lda, rowsB*ldb, m*ldc

	for i := range batch {
		A := blas64.General{Rows: rowsA, Cols: colsA, Data: a[i*aStep : i*aStep+rowsA*lda], Stride: lda}
		B := blas64.General{Rows: rowsB, Cols: colsB, Data: b[i*bStep : i*bStep+rowsB*ldb], Stride: ldb}
		C := blas64.General{Rows: m, Cols: n, Data: c[i*cStep : i*cStep+m*ldc], Stride: ldc}
		blas64.Gemm(ta, tb, alpha, A, B, beta, C)
	}
}

// Floating is the dtype constraint the batched GEMM dispatcher accepts.
type Floating interface {
	~float32 | ~float64
}

// BatchGemm dispatches to BatchGemmF32 or BatchGemmF64 for whichever
// concrete floating type T resolves to, with alpha fixed at 1 and beta
// selected by accumulate. This is the entry point the signature package's
// kernels use directly for their outer-product recurrences, and that
// CPUEngine.BatchMatMul/BatchAddMatMul use for general batched matmuls.
func BatchGemm[T Floating](batch int, transA, transB bool, m, n, k int, a []T, lda int, b []T, ldb int, accumulate bool, c []T, ldc int) {
	switch av := any(a).(type) {
	case []float32:
		beta := float32(0)
		if accumulate {
			beta = 1
		}

		BatchGemmF32(batch, transA, transB, m, n, k, 1, av, lda, any(b).([]float32), ldb, beta, any(c).([]float32), ldc)
	case []float64:
		beta := float64(0)
		if accumulate {
			beta = 1
		}

		BatchGemmF64(batch, transA, transB, m, n, k, 1, av, lda, any(b).([]float64), ldb, beta, any(c).([]float64), ldc)
	}
}
