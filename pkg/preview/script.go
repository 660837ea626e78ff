package preview

// ContainerID is the id of the element the client script updates.
const ContainerID = "richtext-preview"

// ClientScript subscribes the page to live preview updates. It reads the
// story and websocket path from the data-story and data-ws attributes of
// the #richtext-preview element and replaces its content on every input
// message.
const ClientScript = `
(function() {
    'use strict';

    var root = document.getElementById('` + ContainerID + `');
    if (!root) {
        return;
    }
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var url = protocol + '//' + location.host + root.dataset.ws +
            '?story=' + encodeURIComponent(root.dataset.story);
        var ws = new WebSocket(url);

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            switch (msg.type) {
                case 'input':
                    root.innerHTML = msg.html;
                    root.removeAttribute('data-error');
                    break;
                case 'error':
                    console.error('[richtext] preview error:', msg.error);
                    root.setAttribute('data-error', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
