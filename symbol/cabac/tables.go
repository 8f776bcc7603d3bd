/*
NAME
  tables.go

DESCRIPTION
  tables.go holds the codIRangeLPS and state transition tables (9-44,
  9-45), copied from codec/h264/h264dec/rangetablps.go and
  statetransxtab.go. These tables are specified by the H.264 standard and
  are reused verbatim by H.265 and H.266 CABAC.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package cabac

// rangeTabLPS provides codIRangeLPS per table 9-44: rows are pStateIdx,
// columns are qCodIRangeIdx.
var rangeTabLPS = [64][4]int{
	0:  {128, 176, 208, 240},
	1:  {128, 167, 197, 227},
	2:  {128, 158, 187, 216},
	3:  {123, 150, 178, 205},
	4:  {116, 142, 169, 195},
	5:  {111, 135, 160, 185},
	6:  {105, 128, 152, 175},
	7:  {100, 122, 144, 166},
	8:  {95, 116, 137, 158},
	9:  {90, 110, 130, 150},
	10: {85, 104, 123, 142},
	11: {81, 99, 117, 135},
	12: {77, 94, 111, 128},
	13: {73, 89, 105, 122},
	14: {69, 85, 100, 116},
	15: {66, 80, 95, 110},
	16: {62, 76, 90, 104},
	17: {59, 72, 86, 99},
	18: {56, 69, 81, 94},
	19: {53, 65, 77, 89},
	20: {51, 62, 73, 85},
	21: {48, 59, 69, 80},
	22: {46, 56, 66, 76},
	23: {43, 53, 63, 72},
	24: {41, 50, 59, 69},
	25: {39, 48, 56, 65},
	26: {37, 45, 54, 62},
	27: {35, 43, 51, 59},
	28: {33, 41, 48, 56},
	29: {32, 39, 46, 53},
	30: {30, 37, 43, 50},
	31: {29, 35, 41, 48},
	32: {27, 33, 39, 45},
	33: {26, 31, 37, 43},
	34: {24, 30, 35, 41},
	35: {23, 28, 33, 39},
	36: {22, 27, 32, 37},
	37: {21, 26, 30, 35},
	38: {20, 24, 29, 33},
	39: {19, 23, 27, 31},
	40: {18, 22, 26, 30},
	41: {17, 21, 25, 28},
	42: {16, 20, 23, 27},
	43: {15, 19, 22, 25},
	44: {14, 18, 21, 24},
	45: {14, 17, 20, 23},
	46: {13, 16, 19, 22},
	47: {12, 15, 18, 21},
	48: {12, 14, 17, 20},
	49: {11, 14, 16, 19},
	50: {11, 13, 15, 18},
	51: {10, 12, 15, 17},
	52: {10, 12, 14, 16},
	53: {9, 11, 13, 15},
	54: {9, 11, 12, 14},
	55: {8, 10, 12, 14},
	56: {8, 9, 11, 13},
	57: {7, 9, 11, 12},
	58: {7, 9, 10, 12},
	59: {7, 8, 10, 11},
	60: {6, 8, 9, 11},
	61: {6, 7, 9, 10},
	62: {6, 7, 8, 9},
	63: {2, 2, 2, 2},
}

type stateTrans struct {
	transIdxLPS, transIdxMPS int
}

// stateTransTab provides the next pStateIdx per table 9-45.
var stateTransTab = [64]stateTrans{
	0:  {0, 1},
	1:  {0, 2},
	2:  {1, 3},
	3:  {2, 4},
	4:  {2, 5},
	5:  {4, 6},
	6:  {4, 7},
	7:  {5, 8},
	8:  {6, 9},
	9:  {7, 10},
	10: {8, 11},
	11: {9, 12},
	12: {9, 13},
	13: {11, 14},
	14: {11, 15},
	15: {12, 16},
	16: {13, 17},
	17: {13, 18},
	18: {15, 19},
	19: {15, 20},
	20: {16, 21},
	21: {16, 22},
	22: {18, 23},
	23: {18, 24},
	24: {19, 25},
	25: {19, 26},
	26: {21, 27},
	27: {21, 28},
	28: {22, 29},
	29: {22, 30},
	30: {23, 31},
	31: {24, 32},
	32: {24, 33},
	33: {25, 34},
	34: {26, 35},
	35: {26, 36},
	36: {27, 37},
	37: {27, 38},
	38: {28, 39},
	39: {29, 40},
	40: {29, 41},
	41: {30, 42},
	42: {30, 43},
	43: {30, 44},
	44: {31, 45},
	45: {32, 46},
	46: {32, 47},
	47: {33, 48},
	48: {33, 49},
	49: {33, 50},
	50: {34, 51},
	51: {34, 52},
	52: {35, 53},
	53: {35, 54},
	54: {35, 55},
	55: {36, 56},
	56: {36, 57},
	57: {36, 58},
	58: {37, 59},
	59: {37, 60},
	60: {37, 61},
	61: {38, 62},
	62: {38, 62},
	63: {63, 63},
}
