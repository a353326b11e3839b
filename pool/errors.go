// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import "errors"

// ErrClosed is returned by [LockFreePool.Submit] once Shutdown has been
// called. A job rejected with ErrClosed was never enqueued and will
// never run.
var ErrClosed = errors.New("pool: closed")
